package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "input", config.Paths.RawDir)
	assert.Equal(t, "output", config.Paths.MonthDir)
	assert.Equal(t, "processed_records", config.Paths.RecordsDir)
	assert.Equal(t, "chunks", config.Paths.ChunksDir)
	assert.Equal(t, 1705, config.Numbering.Ceiling)
	assert.Equal(t, "[NR]", config.Numbering.Marker)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, 2, config.Retry.MaxAttempts)
	assert.Equal(t, 3*time.Second, config.Retry.InitialDelay)
	assert.Equal(t, 30*time.Second, config.Retry.MaxDelay)
	assert.Equal(t, 2*time.Minute, config.Retry.Timeout)
	assert.Equal(t, "gemini-2.0-flash", config.AI.Model)
	assert.Equal(t, "gemini-2.5-flash", config.AI.OCRModel)
	assert.Equal(t, "", config.AI.APIKey)
	assert.Equal(t, "http://api.geonames.org/searchJSON", config.Geonames.URL)
	assert.Equal(t, 1.0, config.Geonames.RequestsPerSecond)
	assert.Equal(t, "geonames_cache.json", config.Geonames.CacheFile)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	testEnvVars := map[string]string{
		"TERING_LOG_LEVEL":           "debug",
		"TERING_LOG_FORMAT":          "json",
		"TERING_PATHS_MONTH_DIR":     "months",
		"TERING_NUMBERING_CEILING":   "2000",
		"TERING_WORKERS":             "8",
		"TERING_RETRY_INITIAL_DELAY": "500ms",
		"TERING_AI_MODEL":            "gemini-1.5-pro",
		"GEMINI_API_KEY":             "test-api-key",
		"GEONAMES_USERNAME":          "tartu",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "months", config.Paths.MonthDir)
	assert.Equal(t, 2000, config.Numbering.Ceiling)
	assert.Equal(t, 8, config.Workers)
	assert.Equal(t, 500*time.Millisecond, config.Retry.InitialDelay)
	assert.Equal(t, "gemini-1.5-pro", config.AI.Model)
	assert.Equal(t, "test-api-key", config.AI.APIKey)
	assert.Equal(t, "tartu", config.Geonames.Username)
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `
log:
  level: "warn"
  format: "json"
paths:
  raw_dir: "scans"
numbering:
  ceiling: 120
  marker: "##"
retry:
  max_attempts: 5
  timeout: 10s
`)
	t.Chdir(tempDir)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "scans", config.Paths.RawDir)
	assert.Equal(t, 120, config.Numbering.Ceiling)
	assert.Equal(t, "##", config.Numbering.Marker)
	assert.Equal(t, 5, config.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Second, config.Retry.Timeout)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `
log:
  level: "warn"
workers: 2
numbering:
  ceiling: 300
`)
	t.Setenv("TERING_LOG_LEVEL", "error")
	t.Setenv("TERING_WORKERS", "6")
	t.Chdir(tempDir)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)     // env var wins
	assert.Equal(t, 6, config.Workers)             // env var wins
	assert.Equal(t, 300, config.Numbering.Ceiling) // config file value
}

func TestInitializeConfigFromFile(t *testing.T) {
	clearTestEnvVars(t)
	path := writeConfig(t, t.TempDir(), "workers: 3\n")

	config, err := InitializeConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, config.Workers)

	_, err = InitializeConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, "invalid log level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"zero ceiling", func(c *Config) { c.Numbering.Ceiling = 0 }, "numbering.ceiling must be at least 1"},
		{"empty marker", func(c *Config) { c.Numbering.Marker = "" }, "numbering.marker must not be empty"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers must be at least 1"},
		{"no attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "retry.max_attempts must be at least 1"},
		{"inverted delays", func(c *Config) { c.Retry.MaxDelay = time.Millisecond }, "retry delays must satisfy"},
		{"zero timeout", func(c *Config) { c.Retry.Timeout = 0 }, "retry.timeout must be positive"},
		{"zero rate", func(c *Config) { c.Geonames.RequestsPerSecond = 0 }, "geonames.requests_per_second must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnvVars(t)
			t.Chdir(t.TempDir())
			config, err := InitializeConfig()
			require.NoError(t, err)

			tt.modifyConfig(config)
			err = validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	config := &Config{}
	config.Log.Level = "debug"
	config.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(config)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	config.Log.Level = "bogus"
	config.Log.Format = "text"
	logger = ConfigureLoggingFromConfig(config)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TERING_TEST_VALUE=from-dotenv\n"), 0600))
	t.Chdir(dir)
	t.Setenv("TERING_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("TERING_TEST_VALUE"))

	path, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ".env", path)
	assert.Equal(t, "from-dotenv", GetEnv("TERING_TEST_VALUE", "fallback"))
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	assert.Equal(t, logrus.WarnLevel, LevelFromEnv())

	t.Setenv("LOG_LEVEL", "nonsense")
	assert.Equal(t, logrus.InfoLevel, LevelFromEnv())
}

// clearTestEnvVars unsets the variables the tests rely on; t.Setenv restores
// them afterwards.
func clearTestEnvVars(t *testing.T) {
	envVars := []string{
		"TERING_LOG_LEVEL",
		"TERING_LOG_FORMAT",
		"TERING_PATHS_RAW_DIR",
		"TERING_PATHS_MONTH_DIR",
		"TERING_NUMBERING_CEILING",
		"TERING_NUMBERING_MARKER",
		"TERING_WORKERS",
		"TERING_RETRY_MAX_ATTEMPTS",
		"TERING_RETRY_INITIAL_DELAY",
		"TERING_AI_MODEL",
		"GEMINI_API_KEY",
		"GEONAMES_USERNAME",
	}
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}
}
