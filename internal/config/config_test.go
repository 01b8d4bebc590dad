package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Filename != "report.json" {
		t.Errorf("Filename = %q, want report.json", cfg.Filename)
	}
	if cfg.Server.Enable {
		t.Error("server should be disabled by default")
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if port, _ := cfg.Server.ResolvedPort(); port != 8888 {
		t.Errorf("port = %d, want 8888", port)
	}
	if !cfg.Server.AutoOpenBrowser {
		t.Error("autoOpenBrowser should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Filename != "report.json" {
		t.Errorf("Filename = %q", cfg.Filename)
	}
	if cfg.Store.Path != filepath.Join(dir, ".sizereport", "reports.db") {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Title == "" {
		t.Error("Title should default")
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "filename": "out/size.json",
  "reportAssets": true,
  "threshold": {"size": "2MiB", "packages": {"main": "1MiB"}},
  "groups": [
    {"name": "home", "entryRules": {"include": ["src/pages/home"]}, "threshold": "100KiB"},
    {"entryRules": {"include": ["src/pages/**"]}, "noEntryRules": {"include": ["node_modules/**"]}, "ignoreSubEntry": true}
  ],
  "server": {"enable": true, "port": "auto"}
}`
	if err := os.WriteFile(filepath.Join(dir, "sizereport.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Filename != "out/size.json" {
		t.Errorf("Filename = %q", cfg.Filename)
	}
	if !cfg.ReportAssets {
		t.Error("ReportAssets should be true")
	}
	if len(cfg.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(cfg.Groups))
	}
	if cfg.Groups[0].Name != "home" || cfg.Groups[0].Threshold != "100KiB" {
		t.Errorf("group[0] = %+v", cfg.Groups[0])
	}
	if cfg.Groups[1].NoEntryRules == nil || !cfg.Groups[1].IgnoreSubEntry {
		t.Errorf("group[1] = %+v", cfg.Groups[1])
	}
	if port, err := cfg.Server.ResolvedPort(); err != nil || port != 0 {
		t.Errorf("ResolvedPort = %d, %v; want 0", port, err)
	}
	if got := cfg.ReportPath(dir); got != filepath.Join(dir, "out", "size.json") {
		t.Errorf("ReportPath = %q", got)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SIZEREPORT_FILENAME", "env.json")
	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Filename != "env.json" {
		t.Errorf("Filename = %q, want env.json", cfg.Filename)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty filename", func(c *Config) { c.Filename = " " }, "filename"},
		{"bad port", func(c *Config) { c.Server.Port = "http" }, "server.port"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"group without rules", func(c *Config) { c.Groups = []GroupConfig{{Name: "x"}} }, "groups[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultTitle(t *testing.T) {
	t.Setenv("npm_package_name", "")
	now := time.Date(2024, time.March, 5, 9, 7, 0, 0, time.UTC)
	if got := DefaultTitle(now); got != "Size Report [5 Mar 2024 at 09:07]" {
		t.Errorf("DefaultTitle = %q", got)
	}
	t.Setenv("npm_package_name", "shop")
	if got := DefaultTitle(now); !strings.HasPrefix(got, "shop [") {
		t.Errorf("DefaultTitle = %q, want shop prefix", got)
	}
}

func TestWriteAndLint_RoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, StarterConfig(), format); err != nil {
				t.Fatalf("Write: %v", err)
			}
			path := filepath.Join(t.TempDir(), "sizereport."+format)
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				t.Fatal(err)
			}
			res, err := Lint(path)
			if err != nil {
				t.Fatalf("Lint: %v", err)
			}
			if !res.OK() {
				t.Errorf("starter config should lint clean: %+v", res)
			}

			cfg, err := LoadConfig(filepath.Dir(path), path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if len(cfg.Groups) != 2 || !cfg.ReportPages {
				t.Errorf("round trip lost data: %+v", cfg)
			}
		})
	}
}

func TestLint_UnknownKeys(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"a.json": `{"reportAsset": true}`,
		"b.yaml": "reportAsset: true\n",
		"c.toml": "reportAsset = true\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		res, err := Lint(path)
		if err != nil {
			t.Fatalf("Lint(%s): %v", name, err)
		}
		if len(res.UnknownKeys) == 0 {
			t.Errorf("%s: expected unknown key to be reported, got %+v", name, res)
		}
	}
}

func TestFormatOf(t *testing.T) {
	if _, err := FormatOf("sizereport.ini"); err == nil {
		t.Error("expected error for .ini")
	}
	if f, _ := FormatOf("x.YML"); f != "yaml" {
		t.Errorf("FormatOf(x.YML) = %q", f)
	}
}
