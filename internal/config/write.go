package config

import (
	"encoding/json"
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"sizereport/internal/match"
)

// StarterConfig returns the config written by `sizereport init`.
func StarterConfig() *Config {
	cfg := DefaultConfig()
	cfg.ReportPages = true
	cfg.Threshold = map[string]interface{}{
		"size":     "16MiB",
		"packages": "2MiB",
	}
	cfg.Groups = []GroupConfig{
		{
			Name:       "app",
			EntryRules: match.Rules{Include: []string{"src/app.js"}},
		},
		{
			Name:       "vendor",
			EntryRules: match.Rules{Include: []string{"src/pages/**"}},
			NoEntryRules: &match.Rules{
				Include: []string{"node_modules/**"},
			},
			IgnoreSubEntry: true,
		},
	}
	return cfg
}

// Write encodes cfg in the given format ("json", "yaml" or "toml").
func Write(w io.Writer, cfg *Config, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "toml":
		data, err = toml.Marshal(cfg)
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s config: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}
