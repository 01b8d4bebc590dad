package buildstats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	reperrors "sizereport/internal/errors"
)

const sampleStats = `{
  "outputPath": "dist",
  "modules": [
    {"id": "app", "resource": "./src/app.js", "size": 10,
     "dependencies": [
       {"module": "util"},
       {"module": "lazy", "active": false},
       {"module": "polyfill", "weak": true},
       {"module": "ghost"}
     ]},
    {"id": "util", "resource": "src\\util.js", "size": 20},
    {"id": "lazy", "resource": "src/lazy.js", "size": 30},
    {"id": "polyfill", "resource": "node_modules/p/index.js", "size": 40},
    {"id": "style", "resource": "src/app.css", "identifier": "css ./src/app.css", "size": 50}
  ],
  "entries": [
    {"module": "app", "children": ["lazy", "missing"]},
    {"module": "lazy"}
  ],
  "subpackages": {"shop": "pkgs/shop", "deals": "pkgs/shop/deals"},
  "pages": ["./pages/index"],
  "assets": [
    {"name": "app.js", "size": 100},
    {"name": "app.js.map", "size": 999},
    {"name": "app.css", "size": 60, "modules": ["style"]},
    {"name": "logo.png", "size": 70},
    {"name": "vendor.js", "size": 80, "type": "copy"},
    {"name": "pkgs/shop/index.js", "size": 90}
  ]
}`

func writeStats(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "stats.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadResolvesOutputPath(t *testing.T) {
	dir := t.TempDir()
	stats, err := Load(writeStats(t, dir, sampleStats))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(dir, "dist"); stats.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", stats.OutputPath, want)
	}

	stats, err = Load(writeStats(t, dir, `{"modules": []}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stats.OutputPath != dir {
		t.Errorf("OutputPath = %q, want stats directory %q", stats.OutputPath, dir)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !reperrors.Is(err, reperrors.IOFailure) {
		t.Errorf("missing file: got %v, want IO_FAILURE", err)
	}

	_, err = Decode(strings.NewReader(`{"modules": [`))
	if !reperrors.Is(err, reperrors.StatsInvalid) {
		t.Errorf("bad json: got %v, want STATS_INVALID", err)
	}
}

func TestResolve(t *testing.T) {
	stats, err := Decode(strings.NewReader(sampleStats))
	if err != nil {
		t.Fatal(err)
	}
	b, err := stats.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if b.Graph.Len() != 5 {
		t.Errorf("graph has %d modules, want 5", b.Graph.Len())
	}
	util, _ := b.Graph.Module("util")
	if util.Resource != "src/util.js" {
		t.Errorf("util resource = %q, want normalized path", util.Resource)
	}
	app, _ := b.Graph.Module("app")
	if app.Resource != "src/app.js" {
		t.Errorf("app resource = %q", app.Resource)
	}

	t.Run("connections", func(t *testing.T) {
		if len(app.Connections) != 4 {
			t.Fatalf("app has %d connections, want 4", len(app.Connections))
		}
		want := map[string]bool{"util": true, "lazy": false, "polyfill": false, "ghost": false}
		for _, c := range app.Connections {
			if got := c.Traversable(); got != want[c.Dependency] {
				t.Errorf("connection to %s traversable = %v, want %v", c.Dependency, got, want[c.Dependency])
			}
		}
	})

	t.Run("entries", func(t *testing.T) {
		nodes := b.Entries.Nodes()
		if len(nodes) != 3 {
			t.Fatalf("got %d entry nodes, want 3", len(nodes))
		}
		appNode, ok := b.Entries.Node(app)
		if !ok {
			t.Fatal("app entry node not indexed")
		}
		if len(appNode.Children) != 2 {
			t.Fatalf("app has %d children, want 2", len(appNode.Children))
		}
		lazy, _ := b.Graph.Module("lazy")
		lazyNode, _ := b.Entries.Node(lazy)
		if len(lazyNode.Parents) != 1 || lazyNode.Parents[0] != appNode {
			t.Errorf("lazy parents = %v, want [app]", lazyNode.Parents)
		}
		if got := len(b.Entries.EntryModules()); got != 2 {
			t.Errorf("EntryModules() = %d, want 2 resolved", got)
		}
		if got := b.Diagnostics.Count(reperrors.MissingOwnershipLink); got != 1 {
			t.Errorf("MISSING_OWNERSHIP_LINK warnings = %d, want 1", got)
		}
	})

	t.Run("assets", func(t *testing.T) {
		want := map[string]AssetKind{
			"app.js":             KindChunk,
			"app.css":            KindStatic,
			"logo.png":           KindCopy,
			"vendor.js":          KindCopy,
			"pkgs/shop/index.js": KindChunk,
		}
		if len(b.Assets) != len(want) {
			t.Fatalf("got %d assets, want %d (source maps excluded)", len(b.Assets), len(want))
		}
		for _, a := range b.Assets {
			if a.Kind != want[a.Name] {
				t.Errorf("%s kind = %s, want %s", a.Name, a.Kind, want[a.Name])
			}
			if a.Name == "app.css" && (len(a.Modules) != 1 || a.Modules[0].ID != "style") {
				t.Errorf("app.css modules = %v", a.Modules)
			}
		}
	})

	if len(b.Pages) != 1 || b.Pages[0] != "pages/index" {
		t.Errorf("Pages = %v", b.Pages)
	}
}

func TestResolveRejectsBadModules(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing id", `{"modules": [{"resource": "a.js"}]}`},
		{"duplicate id", `{"modules": [{"id": "a"}, {"id": "a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := Decode(strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := stats.Resolve(); !reperrors.Is(err, reperrors.StatsInvalid) {
				t.Errorf("Resolve() error = %v, want STATS_INVALID", err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		hasModules bool
		hint       string
		want       AssetKind
	}{
		{"script", "a.js", false, "", KindChunk},
		{"module script", "a.mjs", false, "", KindChunk},
		{"image", "a.png", false, "", KindCopy},
		{"css with modules", "a.css", true, "", KindStatic},
		{"script with modules stays static", "a.js", true, "", KindStatic},
		{"copy hint", "a.js", false, "copy", KindCopy},
		{"modules beat copy hint", "a.wxss", true, "copy", KindStatic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.file, tt.hasModules, tt.hint); got != tt.want {
				t.Errorf("Classify(%q, %v, %q) = %s, want %s", tt.file, tt.hasModules, tt.hint, got, tt.want)
			}
		})
	}
}

func TestPackageOf(t *testing.T) {
	r := NewPackageResolver(map[string]string{
		"shop":  "pkgs/shop",
		"deals": "./pkgs/shop/deals/",
		"empty": "",
	})
	tests := []struct {
		file string
		want string
	}{
		{"app.js", MainPackage},
		{"pkgs/shop/index.js", "shop"},
		{"pkgs/shop/deals/index.js", "deals"},
		{"pkgs/shopping/index.js", MainPackage},
		{"/pkgs/shop/a.js", "shop"},
		{"pkgs\\shop\\b.js", "shop"},
	}
	for _, tt := range tests {
		if got := r.PackageOf(tt.file); got != tt.want {
			t.Errorf("PackageOf(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}

	var nilResolver *PackageResolver
	if got := nilResolver.PackageOf("x.js"); got != MainPackage {
		t.Errorf("nil resolver PackageOf = %q", got)
	}
}
