package bundler

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"sizereport/internal/bundleparse"
	"sizereport/internal/buildstats"
	"sizereport/internal/paths"
)

// ToStats converts a metafile into build stats. outdir is the output
// directory as it appears in the metafile's output keys, relative to the
// build's working directory; asset names are made relative to it.
func ToStats(meta *Metafile, outdir string) *buildstats.Stats {
	outdir = strings.Trim(paths.NormalizePath(outdir), "/")
	stats := &buildstats.Stats{}

	for _, in := range sortedKeys(meta.Inputs) {
		input := meta.Inputs[in]
		ms := buildstats.ModuleStat{ID: in, Resource: in, Size: int64(input.Bytes)}
		for _, imp := range input.Imports {
			if imp.External {
				continue
			}
			dep := buildstats.DependencyStat{Module: imp.Path}
			switch imp.Kind {
			case kindDynamicImport:
				inactive := false
				dep.Active = &inactive
			case kindRequireResolve:
				dep.Weak = true
			}
			ms.Dependencies = append(ms.Dependencies, dep)
		}
		stats.Modules = append(stats.Modules, ms)
	}

	entries := entryModules(meta)
	for _, e := range entries {
		stats.Entries = append(stats.Entries, buildstats.EntryStat{
			Module:   e,
			Children: childEntries(meta, e, entries),
		})
	}

	for _, out := range sortedKeys(meta.Outputs) {
		if paths.IsSourceMap(out) {
			continue
		}
		output := meta.Outputs[out]
		as := buildstats.AssetStat{Name: assetName(out, outdir), Size: int64(output.Bytes)}
		if !paths.IsScript(out) {
			as.Type = "static"
			as.Modules = sortedKeys(output.Inputs)
		}
		stats.Assets = append(stats.Assets, as)
	}
	return stats
}

// entryModules returns the inputs that start an output: the configured
// entry points and the targets of dynamic imports.
func entryModules(meta *Metafile) []string {
	set := make(map[string]struct{})
	for _, out := range meta.Outputs {
		if out.EntryPoint != "" {
			set[out.EntryPoint] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// childEntries follows the static imports of entry and collects the entries
// it reaches through dynamic imports.
func childEntries(meta *Metafile, entry string, entries []string) []string {
	isEntry := make(map[string]bool, len(entries))
	for _, e := range entries {
		isEntry[e] = true
	}

	children := make(map[string]struct{})
	visited := map[string]bool{entry: true}
	stack := []string{entry}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, imp := range meta.Inputs[cur].Imports {
			if imp.External || imp.Kind == kindRequireResolve {
				continue
			}
			if imp.Kind == kindDynamicImport {
				if isEntry[imp.Path] && imp.Path != entry {
					children[imp.Path] = struct{}{}
				}
				continue
			}
			if !visited[imp.Path] {
				visited[imp.Path] = true
				stack = append(stack, imp.Path)
			}
		}
	}
	return sortedKeys(children)
}

func assetName(output, outdir string) string {
	output = paths.NormalizePath(output)
	if outdir != "" && outdir != "." {
		output = strings.TrimPrefix(output, outdir+"/")
	}
	return path.Clean(output)
}

// MetafileSpans serves module spans from the metafile's bytesInOutput
// figures instead of parsing the emitted bundles. Span offsets are
// synthetic: modules are laid out contiguously in input order.
type MetafileSpans struct {
	byAsset map[string]bundleparse.Spans
}

// NewMetafileSpans indexes the script outputs of meta.
func NewMetafileSpans(meta *Metafile, outdir string) *MetafileSpans {
	outdir = strings.Trim(paths.NormalizePath(outdir), "/")
	ms := &MetafileSpans{byAsset: make(map[string]bundleparse.Spans)}
	for out, output := range meta.Outputs {
		if !paths.IsScript(out) {
			continue
		}
		spans := make(bundleparse.Spans, len(output.Inputs))
		offset := 0
		for _, in := range sortedKeys(output.Inputs) {
			n := output.Inputs[in].BytesInOutput
			if n <= 0 {
				continue
			}
			spans[in] = bundleparse.Span{Start: offset, End: offset + n}
			offset += n
		}
		ms.byAsset[assetName(out, outdir)] = spans
	}
	return ms
}

// ModuleSpans returns the spans of a script output.
func (m *MetafileSpans) ModuleSpans(_ context.Context, assetName string) (bundleparse.Spans, error) {
	spans, ok := m.byAsset[assetName]
	if !ok {
		return nil, fmt.Errorf("output %s not in metafile: %w", assetName, fs.ErrNotExist)
	}
	return spans, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
