// Package testutil provides fixtures and golden-file helpers for tests.
package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"testing"

	"sizereport/internal/bundleparse"
	"sizereport/internal/buildstats"
)

// StatsBuilder assembles a build stats document fluently. Module resources
// default to "src/<id>.js" so rules can match them by path.
type StatsBuilder struct {
	stats buildstats.Stats
	index map[string]int
}

// NewStats starts an empty stats document.
func NewStats() *StatsBuilder {
	return &StatsBuilder{index: make(map[string]int)}
}

// Module adds a module with the given size and traversable dependencies.
func (b *StatsBuilder) Module(id string, size int64, deps ...string) *StatsBuilder {
	ms := buildstats.ModuleStat{ID: id, Resource: ResourceOf(id), Size: size}
	for _, d := range deps {
		ms.Dependencies = append(ms.Dependencies, buildstats.DependencyStat{Module: d})
	}
	b.index[id] = len(b.stats.Modules)
	b.stats.Modules = append(b.stats.Modules, ms)
	return b
}

// Weak adds a weak dependency edge between existing modules.
func (b *StatsBuilder) Weak(from, to string) *StatsBuilder {
	return b.edge(from, buildstats.DependencyStat{Module: to, Weak: true})
}

// Lazy adds an inactive dependency edge between existing modules.
func (b *StatsBuilder) Lazy(from, to string) *StatsBuilder {
	inactive := false
	return b.edge(from, buildstats.DependencyStat{Module: to, Active: &inactive})
}

func (b *StatsBuilder) edge(from string, dep buildstats.DependencyStat) *StatsBuilder {
	i, ok := b.index[from]
	if !ok {
		panic(fmt.Sprintf("testutil: unknown module %q", from))
	}
	b.stats.Modules[i].Dependencies = append(b.stats.Modules[i].Dependencies, dep)
	return b
}

// Entry declares an entry node and its child entries.
func (b *StatsBuilder) Entry(id string, children ...string) *StatsBuilder {
	b.stats.Entries = append(b.stats.Entries, buildstats.EntryStat{Module: id, Children: children})
	return b
}

// Static adds a non-script asset produced from modules.
func (b *StatsBuilder) Static(name string, size int64, modules ...string) *StatsBuilder {
	b.stats.Assets = append(b.stats.Assets, buildstats.AssetStat{Name: name, Size: size, Modules: modules})
	return b
}

// Chunk adds a script bundle whose modules are recovered by parsing.
func (b *StatsBuilder) Chunk(name string, size int64) *StatsBuilder {
	b.stats.Assets = append(b.stats.Assets, buildstats.AssetStat{Name: name, Size: size})
	return b
}

// Copy adds an opaque copied file.
func (b *StatsBuilder) Copy(name string, size int64) *StatsBuilder {
	b.stats.Assets = append(b.stats.Assets, buildstats.AssetStat{Name: name, Size: size, Type: string(buildstats.KindCopy)})
	return b
}

// Subpackage maps a subpackage name to its root prefix.
func (b *StatsBuilder) Subpackage(name, root string) *StatsBuilder {
	if b.stats.Subpackages == nil {
		b.stats.Subpackages = make(map[string]string)
	}
	b.stats.Subpackages[name] = root
	return b
}

// Page lists the resource of a page module.
func (b *StatsBuilder) Page(id string) *StatsBuilder {
	b.stats.Pages = append(b.stats.Pages, ResourceOf(id))
	return b
}

// Stats returns the assembled document.
func (b *StatsBuilder) Stats() *buildstats.Stats {
	s := b.stats
	return &s
}

// Build resolves the document, failing the test on error.
func (b *StatsBuilder) Build(t *testing.T) *buildstats.Build {
	t.Helper()
	build, err := b.Stats().Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return build
}

// ResourceOf returns the default resource path of a fixture module.
func ResourceOf(id string) string {
	return "src/" + id + ".js"
}

// Spans is an in-memory span source keyed by asset name. Unknown assets fail
// like a missing file.
type Spans map[string]bundleparse.Spans

// ModuleSpans implements the span source used by the analysis pass.
func (s Spans) ModuleSpans(_ context.Context, assetName string) (bundleparse.Spans, error) {
	spans, ok := s[assetName]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", assetName, fs.ErrNotExist)
	}
	return spans, nil
}

// Sized builds contiguous spans with the given sizes, in order.
func Sized(sizes map[string]int) bundleparse.Spans {
	out := make(bundleparse.Spans, len(sizes))
	offset := 0
	for _, id := range sortedIDs(sizes) {
		out[id] = bundleparse.Span{Start: offset, End: offset + sizes[id]}
		offset += sizes[id]
	}
	return out
}

func sortedIDs(m map[string]int) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
