package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LintResult lists problems found by a strict read of a config file.
type LintResult struct {
	Path        string   `json:"path"`
	Format      string   `json:"format"`
	UnknownKeys []string `json:"unknownKeys,omitempty"`
	Problems    []string `json:"problems,omitempty"`
}

// OK reports whether the file is clean.
func (r *LintResult) OK() bool {
	return len(r.UnknownKeys) == 0 && len(r.Problems) == 0
}

// FormatOf returns the config format implied by a file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
}

// Lint reads path strictly. Viper silently ignores misspelled options, so
// this is the place where a typo such as "reportAsset" becomes visible.
func Lint(path string) (*LintResult, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	res := &LintResult{Path: path, Format: format}
	var cfg Config

	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			res.addDecodeError(err)
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			res.addDecodeError(err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			res.Problems = append(res.Problems, err.Error())
			break
		}
		for _, key := range md.Undecoded() {
			if underFreeForm(key) {
				continue
			}
			res.UnknownKeys = append(res.UnknownKeys, key.String())
		}
		sort.Strings(res.UnknownKeys)
	}

	if res.OK() {
		if cfg.Filename == "" {
			cfg.Filename = DefaultConfig().Filename
		}
		if err := cfg.Validate(); err != nil {
			res.Problems = append(res.Problems, err.Error())
		}
	}
	return res, nil
}

// freeFormKeys are options decoded into interface{} values; their nested keys
// are validated later by the threshold parser, not by the schema.
var freeFormKeys = map[string]bool{
	"threshold":        true,
	"groups.threshold": true,
}

func underFreeForm(key toml.Key) bool {
	for i := 1; i < len(key); i++ {
		if freeFormKeys[strings.Join(key[:i], ".")] {
			return true
		}
	}
	return false
}

func (r *LintResult) addDecodeError(err error) {
	msg := err.Error()
	if strings.Contains(msg, "unknown field") || strings.Contains(msg, "not found in type") {
		r.UnknownKeys = append(r.UnknownKeys, msg)
		return
	}
	r.Problems = append(r.Problems, msg)
}
