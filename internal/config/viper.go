// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Paths struct {
		RawDir     string `mapstructure:"raw_dir" yaml:"raw_dir"`
		MonthDir   string `mapstructure:"month_dir" yaml:"month_dir"`
		RecordsDir string `mapstructure:"records_dir" yaml:"records_dir"`
		ChunksDir  string `mapstructure:"chunks_dir" yaml:"chunks_dir"`
	} `mapstructure:"paths" yaml:"paths"`

	Numbering struct {
		Ceiling int    `mapstructure:"ceiling" yaml:"ceiling"`
		Marker  string `mapstructure:"marker" yaml:"marker"`
	} `mapstructure:"numbering" yaml:"numbering"`

	Workers int `mapstructure:"workers" yaml:"workers"`

	Retry struct {
		MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts"`
		InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
		MaxDelay     time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
		Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	} `mapstructure:"retry" yaml:"retry"`

	AI struct {
		Model        string `mapstructure:"model" yaml:"model"`
		OCRModel     string `mapstructure:"ocr_model" yaml:"ocr_model"`
		GlossaryFile string `mapstructure:"glossary_file" yaml:"glossary_file"`
		SchemaFile   string `mapstructure:"schema_file" yaml:"schema_file"`
		ExamplesFile string `mapstructure:"examples_file" yaml:"examples_file"`
		OCRExamples  string `mapstructure:"ocr_examples_file" yaml:"ocr_examples_file"`
		APIKey       string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Geonames struct {
		Username          string  `mapstructure:"username" yaml:"-"`
		URL               string  `mapstructure:"url" yaml:"url"`
		RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
		CacheFile         string  `mapstructure:"cache_file" yaml:"cache_file"`
		RegionsFile       string  `mapstructure:"regions_file" yaml:"regions_file"`
	} `mapstructure:"geonames" yaml:"geonames"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig reading an explicit config
// file instead of searching the standard locations when path is set.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.tering")
		v.AddConfigPath(".tering")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("TERING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. Credentials come from their conventional, unprefixed variables
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}
	if err := v.BindEnv("geonames.username", "GEONAMES_USERNAME"); err != nil {
		fmt.Printf("Warning: failed to bind GEONAMES_USERNAME environment variable: %v\n", err)
	}

	if err := v.BindEnv("log.level", "TERING_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		fmt.Printf("Warning: failed to bind LOG_LEVEL environment variable: %v\n", err)
	}
	if err := v.BindEnv("log.format", "TERING_LOG_FORMAT", "LOG_FORMAT"); err != nil {
		fmt.Printf("Warning: failed to bind LOG_FORMAT environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Directory layout of the pipeline
	v.SetDefault("paths.raw_dir", "input")
	v.SetDefault("paths.month_dir", "output")
	v.SetDefault("paths.records_dir", "processed_records")
	v.SetDefault("paths.chunks_dir", "chunks")

	v.SetDefault("numbering.ceiling", 1705)
	v.SetDefault("numbering.marker", "[NR]")

	v.SetDefault("workers", 4)

	// Retry policy of the generative collaborators
	v.SetDefault("retry.max_attempts", 2)
	v.SetDefault("retry.initial_delay", 3*time.Second)
	v.SetDefault("retry.max_delay", 30*time.Second)
	v.SetDefault("retry.timeout", 2*time.Minute)

	// AI defaults
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.ocr_model", "gemini-2.5-flash")
	v.SetDefault("ai.glossary_file", "")
	v.SetDefault("ai.schema_file", "")
	v.SetDefault("ai.examples_file", "")
	v.SetDefault("ai.ocr_examples_file", "")

	// Geonames defaults
	v.SetDefault("geonames.url", "http://api.geonames.org/searchJSON")
	v.SetDefault("geonames.requests_per_second", 1.0)
	v.SetDefault("geonames.cache_file", "geonames_cache.json")
	v.SetDefault("geonames.regions_file", "")
}

// Validate checks a configuration after command-line overrides.
func Validate(config *Config) error {
	return validateConfig(config)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Numbering.Ceiling < 1 {
		return fmt.Errorf("numbering.ceiling must be at least 1, got: %d", config.Numbering.Ceiling)
	}
	if config.Numbering.Marker == "" {
		return fmt.Errorf("numbering.marker must not be empty")
	}

	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got: %d", config.Workers)
	}

	if config.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got: %d", config.Retry.MaxAttempts)
	}
	if config.Retry.InitialDelay < 0 || config.Retry.MaxDelay < config.Retry.InitialDelay {
		return fmt.Errorf("retry delays must satisfy 0 <= initial_delay <= max_delay, got: %s / %s",
			config.Retry.InitialDelay, config.Retry.MaxDelay)
	}
	if config.Retry.Timeout <= 0 {
		return fmt.Errorf("retry.timeout must be positive, got: %s", config.Retry.Timeout)
	}

	if config.Geonames.RequestsPerSecond <= 0 {
		return fmt.Errorf("geonames.requests_per_second must be positive, got: %g", config.Geonames.RequestsPerSecond)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
