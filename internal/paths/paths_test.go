package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`src\pages\index.js`, "src/pages/index.js"},
		{"./src/app.js", "src/app.js"},
		{"src/app.js", "src/app.js"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalizePath(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "dist", "main.js")
	got, err := CanonicalizePath(file, root)
	if err != nil {
		t.Fatalf("CanonicalizePath: %v", err)
	}
	if got != "dist/main.js" {
		t.Errorf("CanonicalizePath = %q, want dist/main.js", got)
	}
	if !IsWithinRoot(file, root) {
		t.Error("file should be within root")
	}
	if IsWithinRoot(filepath.Dir(root), root) {
		t.Error("parent should not be within root")
	}
}

func TestIsSourceMapAndScript(t *testing.T) {
	tests := []struct {
		name      string
		sourceMap bool
		script    bool
	}{
		{"app.js", false, true},
		{"app.MJS", false, true},
		{"app.js.map", true, false},
		{"app.mjs.map", true, false},
		{"app.css.map", false, false},
		{"logo.png", false, false},
	}
	for _, tt := range tests {
		if got := IsSourceMap(tt.name); got != tt.sourceMap {
			t.Errorf("IsSourceMap(%q) = %v, want %v", tt.name, got, tt.sourceMap)
		}
		if got := IsScript(tt.name); got != tt.script {
			t.Errorf("IsScript(%q) = %v, want %v", tt.name, got, tt.script)
		}
	}
}

func TestEnsureParentDir(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a", "b", "report.json")
	if err := EnsureParentDir(file); err != nil {
		t.Fatalf("EnsureParentDir: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(file)); err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
	if err := EnsureParentDir("report.json"); err != nil {
		t.Errorf("EnsureParentDir(relative file) = %v", err)
	}
}

func TestJoinRootPath(t *testing.T) {
	got := JoinRootPath("/tmp/dist", "pages/index.js")
	if got != filepath.Join("/tmp/dist", "pages", "index.js") {
		t.Errorf("JoinRootPath = %q", got)
	}
}

func TestDefaultStorePath(t *testing.T) {
	got := DefaultStorePath("/proj")
	if got != filepath.Join("/proj", ".sizereport", "reports.db") {
		t.Errorf("DefaultStorePath = %q", got)
	}
}
