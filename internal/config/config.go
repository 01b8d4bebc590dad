package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sizereport/internal/match"
	"sizereport/internal/paths"
)

// ConfigName is the base name searched for in the working directory.
const ConfigName = "sizereport"

// EnvPrefix prefixes environment overrides, e.g. SIZEREPORT_SERVER_PORT.
const EnvPrefix = "SIZEREPORT"

// Config represents the complete size report configuration
type Config struct {
	Title        string        `json:"title,omitempty" mapstructure:"title" yaml:"title,omitempty" toml:"title,omitempty"`
	Filename     string        `json:"filename" mapstructure:"filename" yaml:"filename" toml:"filename"`
	ReportPages  bool          `json:"reportPages" mapstructure:"reportPages" yaml:"reportPages" toml:"reportPages"`
	ReportAssets bool          `json:"reportAssets" mapstructure:"reportAssets" yaml:"reportAssets" toml:"reportAssets"`
	Threshold    interface{}   `json:"threshold,omitempty" mapstructure:"threshold" yaml:"threshold,omitempty" toml:"threshold,omitempty"`
	Groups       []GroupConfig `json:"groups" mapstructure:"groups" yaml:"groups" toml:"groups"`
	Stats        StatsConfig   `json:"stats" mapstructure:"stats" yaml:"stats" toml:"stats"`
	Server       ServerConfig  `json:"server" mapstructure:"server" yaml:"server" toml:"server"`
	Store        StoreConfig   `json:"store" mapstructure:"store" yaml:"store" toml:"store"`
	Logging      LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging" toml:"logging"`
}

// GroupConfig defines one report group
type GroupConfig struct {
	Name           string       `json:"name,omitempty" mapstructure:"name" yaml:"name,omitempty" toml:"name,omitempty"`
	EntryRules     match.Rules  `json:"entryRules" mapstructure:"entryRules" yaml:"entryRules" toml:"entryRules"`
	NoEntryRules   *match.Rules `json:"noEntryRules,omitempty" mapstructure:"noEntryRules" yaml:"noEntryRules,omitempty" toml:"noEntryRules,omitempty"`
	IgnoreSubEntry bool         `json:"ignoreSubEntry,omitempty" mapstructure:"ignoreSubEntry" yaml:"ignoreSubEntry,omitempty" toml:"ignoreSubEntry,omitempty"`
	Threshold      interface{}  `json:"threshold,omitempty" mapstructure:"threshold" yaml:"threshold,omitempty" toml:"threshold,omitempty"`
}

// StatsConfig locates the build stats consumed by `analyze`
type StatsConfig struct {
	File       string `json:"file" mapstructure:"file" yaml:"file" toml:"file"`
	OutputPath string `json:"outputPath,omitempty" mapstructure:"outputPath" yaml:"outputPath,omitempty" toml:"outputPath,omitempty"`
}

// ServerConfig controls the read-only viewer started after a report is written
type ServerConfig struct {
	Enable          bool        `json:"enable" mapstructure:"enable" yaml:"enable" toml:"enable"`
	Host            string      `json:"host" mapstructure:"host" yaml:"host" toml:"host"`
	Port            interface{} `json:"port" mapstructure:"port" yaml:"port" toml:"port"`
	AutoOpenBrowser bool        `json:"autoOpenBrowser" mapstructure:"autoOpenBrowser" yaml:"autoOpenBrowser" toml:"autoOpenBrowser"`
}

// StoreConfig controls persistence of finished runs
type StoreConfig struct {
	Enable bool   `json:"enable" mapstructure:"enable" yaml:"enable" toml:"enable"`
	Path   string `json:"path,omitempty" mapstructure:"path" yaml:"path,omitempty" toml:"path,omitempty"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" yaml:"format" toml:"format"`
	Level  string `json:"level" mapstructure:"level" yaml:"level" toml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Filename: paths.DefaultReportFile,
		Groups:   []GroupConfig{},
		Stats: StatsConfig{
			File: "stats.json",
		},
		Server: ServerConfig{
			Enable:          false,
			Host:            "127.0.0.1",
			Port:            8888,
			AutoOpenBrowser: true,
		},
		Store: StoreConfig{
			Enable: false,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from configFile, or from sizereport.{json,yaml,yml,toml}
// in dir when configFile is empty. A missing config file yields the defaults.
func LoadConfig(dir string, configFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("filename", defaults.Filename)
	v.SetDefault("reportPages", defaults.ReportPages)
	v.SetDefault("reportAssets", defaults.ReportAssets)
	v.SetDefault("stats.file", defaults.Stats.File)
	v.SetDefault("stats.outputPath", "")
	v.SetDefault("server.enable", defaults.Server.Enable)
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.autoOpenBrowser", defaults.Server.AutoOpenBrowser)
	v.SetDefault("store.enable", defaults.Store.Enable)
	v.SetDefault("store.path", "")
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	if cfg.Groups == nil {
		cfg.Groups = []GroupConfig{}
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = paths.DefaultStorePath(dir)
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle(time.Now())
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Filename) == "" {
		return &ConfigError{Field: "filename", Message: "must not be empty"}
	}
	if _, err := c.Server.ResolvedPort(); err != nil {
		return &ConfigError{Field: "server.port", Message: err.Error()}
	}
	if _, err := ParseLogFormat(c.Logging.Format); err != nil {
		return &ConfigError{Field: "logging.format", Message: err.Error()}
	}
	for i, g := range c.Groups {
		if g.EntryRules.Empty() && (g.NoEntryRules == nil || g.NoEntryRules.Empty()) {
			return &ConfigError{
				Field:   fmt.Sprintf("groups[%d]", i),
				Message: "needs entryRules or noEntryRules with at least one include pattern",
			}
		}
	}
	return nil
}

// ReportPath resolves the report filename against dir.
func (c *Config) ReportPath(dir string) string {
	if filepath.IsAbs(c.Filename) {
		return c.Filename
	}
	return filepath.Join(dir, c.Filename)
}

// ResolvedPort returns the listen port. "auto" maps to 0, letting the OS choose.
func (s ServerConfig) ResolvedPort() (int, error) {
	switch p := s.Port.(type) {
	case nil:
		return 8888, nil
	case int:
		return checkPort(p)
	case int64:
		return checkPort(int(p))
	case float64:
		return checkPort(int(p))
	case string:
		if strings.EqualFold(strings.TrimSpace(p), "auto") {
			return 0, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("invalid port %q", p)
		}
		return checkPort(n)
	default:
		return 0, fmt.Errorf("invalid port type %T", s.Port)
	}
}

func checkPort(p int) (int, error) {
	if p < 0 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range", p)
	}
	return p, nil
}

// Addr returns host:port for the viewer listener.
func (s ServerConfig) Addr() (string, error) {
	port, err := s.ResolvedPort()
	if err != nil {
		return "", err
	}
	host := s.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("%s:%d", host, port), nil
}

// ParseLogFormat validates a logging format
func ParseLogFormat(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", "human":
		return "human", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unknown log format %q", s)
	}
}

// DefaultTitle builds "<project> [d Mon yyyy at HH:MM]" using the npm package
// name when the build runs under npm.
func DefaultTitle(now time.Time) string {
	name := os.Getenv("npm_package_name")
	if name == "" {
		name = "Size Report"
	}
	return fmt.Sprintf("%s [%d %s %d at %02d:%02d]",
		name, now.Day(), now.Month().String()[:3], now.Year(), now.Hour(), now.Minute())
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
