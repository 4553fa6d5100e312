// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/tering/internal/config"
	"fjacquet/tering/internal/container"
	"fjacquet/tering/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input     string
	Output    string
	Config    string
	LogLevel  string
	LogFormat string
	Workers   int
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "tering",
		Short: "A CLI tool to segment the Tartu matriculation register into dated records.",
		Long: `tering turns the OCR text of a historical matriculation register into
one file per record: it repairs line-wrap hyphenation, partitions each year
by month, numbers the records and extracts them with their date header.
Collaborating commands transcribe page images, structure records as JSON,
attach GeoNames identifiers and compute per-region statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to tering!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: initApp,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer == nil {
				return
			}
			if err := appContainer.Close(); err != nil {
				Log.Warnf("Failed to release clients: %v", err)
			}
		},
	}

	// SharedFlags holds the persistent flags of every command
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	addSharedFlags(Cmd.PersistentFlags())
}

func addSharedFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
	flags.StringVarP(&SharedFlags.Output, "output", "o", "", "Output file or directory")
	flags.StringVar(&SharedFlags.Config, "config", "", "Config file (default searches $HOME/.tering, .tering and .)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text or json)")
	flags.IntVarP(&SharedFlags.Workers, "workers", "w", 0, "Number of files processed in parallel")
}

func initApp(cmd *cobra.Command, args []string) error {
	if _, err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.InitializeConfigFromFile(SharedFlags.Config)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	Log = config.ConfigureLoggingFromConfig(cfg)
	appContainer, err = container.NewContainerWithLogger(cfg, logging.NewLogrusAdapterFromLogger(Log))
	return err
}

// applyFlagOverrides lets explicitly set flags win over file and environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = SharedFlags.LogFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = SharedFlags.Workers
	}
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return appContainer
}

// GetLogrusAdapter returns the command logger behind the logging interface.
func GetLogrusAdapter() logging.Logger {
	if appContainer != nil {
		return appContainer.GetLogger()
	}
	return logging.NewLogrusAdapterFromLogger(Log)
}

// SetContainer installs a container, for tests running commands directly.
func SetContainer(c *container.Container) {
	appContainer = c
}
