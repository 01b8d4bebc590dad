package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sizereport/internal/config"
	reperrors "sizereport/internal/errors"
	"sizereport/internal/logging"
	"sizereport/internal/version"
)

var (
	// configFlag is the --config flag value
	configFlag string
	// dirFlag is the project directory configs and reports resolve against
	dirFlag   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "sizereport",
	Short: "sizereport - bundle size attribution",
	Long: `sizereport attributes the output size of a JavaScript build to packages,
report groups and pages, checks size thresholds, and serves the resulting
report in a small read-only viewer.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("sizereport version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file (default: sizereport.{json,yaml,yml,toml} in --dir)")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", ".", "Project directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: human or json (overrides config)")
}

// projectDir returns the absolute project directory.
func projectDir() (string, error) {
	dir, err := filepath.Abs(dirFlag)
	if err != nil {
		return "", reperrors.New(reperrors.InternalError, "failed to resolve project directory", err)
	}
	return dir, nil
}

// loadConfig loads and validates the configuration of the project directory.
func loadConfig() (*config.Config, string, error) {
	dir, err := projectDir()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadConfig(dir, configFlag)
	if err != nil {
		return nil, "", reperrors.New(reperrors.ConfigInvalid, "failed to load config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", reperrors.New(reperrors.ConfigInvalid, "invalid config", err)
	}
	return cfg, dir, nil
}

// newLogger builds the command logger. Flags take precedence over config.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	levelName, formatName := cfg.Logging.Level, cfg.Logging.Format
	if logLevel != "" {
		levelName = logLevel
	}
	if logFormat != "" {
		formatName = logFormat
	}

	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, reperrors.New(reperrors.ConfigInvalid, "invalid log level", err)
	}
	format, err := config.ParseLogFormat(formatName)
	if err != nil {
		return nil, reperrors.New(reperrors.ConfigInvalid, "invalid log format", err)
	}

	return logging.NewLogger(logging.Config{
		Format: logging.Format(format),
		Level:  level,
		Output: os.Stderr,
	}), nil
}
