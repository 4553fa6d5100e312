package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// envFiles are the .env locations tried in order: the working directory,
// then its parent (project root when run from a subdirectory).
var envFiles = []string{".env", filepath.Join("..", ".env")}

// LoadEnv loads the first .env file found into the process environment
// without overriding variables already set. It returns the loaded path, ""
// when none exists.
func LoadEnv() (string, error) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return envFile, err
		}
		return envFile, nil
	}
	return "", nil
}

// LevelFromEnv parses LOG_LEVEL, defaulting to info when unset or invalid.
func LevelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(GetEnv("LOG_LEVEL", "info")))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
