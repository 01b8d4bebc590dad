package bundler

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	reperrors "sizereport/internal/errors"
)

const sampleMetafile = `{
  "inputs": {
    "src/index.js": {"bytes": 120, "imports": [
      {"path": "src/util.js", "kind": "import-statement"},
      {"path": "src/lazy.js", "kind": "dynamic-import"},
      {"path": "src/worker.js", "kind": "require-resolve"},
      {"path": "react", "kind": "import-statement", "external": true}
    ]},
    "src/util.js": {"bytes": 40, "imports": []},
    "src/lazy.js": {"bytes": 80, "imports": [{"path": "src/util.js", "kind": "import-statement"}]},
    "src/worker.js": {"bytes": 10, "imports": []},
    "src/style.css": {"bytes": 30, "imports": []}
  },
  "outputs": {
    "dist/index.js": {"bytes": 200, "entryPoint": "src/index.js",
      "inputs": {"src/index.js": {"bytesInOutput": 100}, "src/util.js": {"bytesInOutput": 35}}},
    "dist/index.js.map": {"bytes": 900, "inputs": {}},
    "dist/lazy-ABC.js": {"bytes": 90, "entryPoint": "src/lazy.js",
      "inputs": {"src/lazy.js": {"bytesInOutput": 70}}},
    "dist/index.css": {"bytes": 28, "inputs": {"src/style.css": {"bytesInOutput": 28}}}
  }
}`

func loadSample(t *testing.T) *Metafile {
	t.Helper()
	var meta Metafile
	if err := json.Unmarshal([]byte(sampleMetafile), &meta); err != nil {
		t.Fatal(err)
	}
	return &meta
}

func TestToStats(t *testing.T) {
	stats := ToStats(loadSample(t), "dist")

	if len(stats.Modules) != 5 {
		t.Fatalf("got %d modules, want 5", len(stats.Modules))
	}
	var index = stats.Modules[0]
	for _, m := range stats.Modules {
		if m.ID == "src/index.js" {
			index = m
		}
	}
	if len(index.Dependencies) != 3 {
		t.Fatalf("index deps = %+v, want external import dropped", index.Dependencies)
	}
	for _, d := range index.Dependencies {
		switch d.Module {
		case "src/lazy.js":
			if d.Active == nil || *d.Active {
				t.Errorf("dynamic import should be inactive")
			}
		case "src/worker.js":
			if !d.Weak {
				t.Errorf("require-resolve should be weak")
			}
		case "src/util.js":
			if d.Weak || d.Active != nil {
				t.Errorf("static import should be traversable: %+v", d)
			}
		}
	}

	if len(stats.Entries) != 2 {
		t.Fatalf("entries = %+v", stats.Entries)
	}
	if stats.Entries[0].Module != "src/index.js" || len(stats.Entries[0].Children) != 1 || stats.Entries[0].Children[0] != "src/lazy.js" {
		t.Errorf("index entry = %+v, want child src/lazy.js", stats.Entries[0])
	}

	names := map[string]bool{}
	for _, a := range stats.Assets {
		names[a.Name] = true
		if a.Name == "index.css" && (len(a.Modules) != 1 || a.Modules[0] != "src/style.css") {
			t.Errorf("css asset = %+v", a)
		}
		if a.Name == "index.js" && len(a.Modules) != 0 {
			t.Errorf("script asset should be a chunk: %+v", a)
		}
	}
	if len(names) != 3 || !names["index.js"] || !names["lazy-ABC.js"] || !names["index.css"] {
		t.Errorf("assets = %v", names)
	}
}

func TestToStatsResolves(t *testing.T) {
	b, err := ToStats(loadSample(t), "dist").Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(b.Entries.Nodes()) != 2 {
		t.Errorf("entry nodes = %d", len(b.Entries.Nodes()))
	}
	for _, a := range b.Assets {
		if a.Name == "index.css" && a.Kind != "static" {
			t.Errorf("index.css kind = %s", a.Kind)
		}
		if a.Name == "index.js" && a.Kind != "chunk" {
			t.Errorf("index.js kind = %s", a.Kind)
		}
	}
}

func TestMetafileSpans(t *testing.T) {
	spans := NewMetafileSpans(loadSample(t), "dist")

	got, err := spans.ModuleSpans(context.Background(), "index.js")
	if err != nil {
		t.Fatalf("ModuleSpans() error = %v", err)
	}
	if got["src/index.js"].Size() != 100 || got["src/util.js"].Size() != 35 {
		t.Errorf("spans = %+v", got)
	}
	if got.Total() != 135 {
		t.Errorf("Total() = %d, want 135", got.Total())
	}

	if _, err := spans.ModuleSpans(context.Background(), "index.css"); err == nil {
		t.Error("css output should have no spans")
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"src/index.js": "import { add } from './util.js'\nconsole.log(add(1, 2))\nimport('./lazy.js').then(m => m.run())\n",
		"src/util.js":  "export function add(a, b) { return a + b }\n",
		"src/lazy.js":  "import { add } from './util.js'\nexport function run() { return add(3, 4) }\n",
	}
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := NewBundler(nil).Build(context.Background(), Options{
		WorkDir:     dir,
		EntryPoints: []string{"src/index.js"},
		Outdir:      "dist",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if res.Stats.OutputPath != filepath.Join(dir, "dist") {
		t.Errorf("OutputPath = %q", res.Stats.OutputPath)
	}
	if _, err := os.Stat(filepath.Join(dir, "dist", "index.js")); err != nil {
		t.Errorf("index.js not written: %v", err)
	}
	if len(res.Stats.Entries) < 2 {
		t.Errorf("entries = %+v, want index and lazy", res.Stats.Entries)
	}
	b, err := res.Stats.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range b.Assets {
		if a.Kind != "chunk" {
			continue
		}
		spans, err := res.Spans.ModuleSpans(context.Background(), a.Name)
		if err != nil {
			t.Errorf("no spans for %s: %v", a.Name, err)
			continue
		}
		if spans.Total() > a.Size {
			t.Errorf("%s spans %d exceed size %d", a.Name, spans.Total(), a.Size)
		}
	}
}

func TestBuildFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.js"), []byte("import './missing.js'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewBundler(nil).Build(context.Background(), Options{WorkDir: dir, EntryPoints: []string{"bad.js"}})
	if !reperrors.Is(err, reperrors.BuildFailed) {
		t.Errorf("Build() error = %v, want BUILD_FAILED", err)
	}

	_, err = NewBundler(nil).Build(context.Background(), Options{WorkDir: dir})
	if !reperrors.Is(err, reperrors.ConfigInvalid) {
		t.Errorf("Build() error = %v, want CONFIG_INVALID", err)
	}
}
