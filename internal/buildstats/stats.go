// Package buildstats loads the module graph, entry structure and output
// assets that a build emits for size reporting.
package buildstats

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/graph"
	"sizereport/internal/paths"
)

// Stats is the on-disk document produced by the build.
type Stats struct {
	OutputPath  string            `json:"outputPath"`
	Modules     []ModuleStat      `json:"modules"`
	Entries     []EntryStat       `json:"entries"`
	Subpackages map[string]string `json:"subpackages,omitempty"`
	Pages       []string          `json:"pages,omitempty"`
	Assets      []AssetStat       `json:"assets"`
}

// ModuleStat describes one module.
type ModuleStat struct {
	ID           string           `json:"id"`
	Resource     string           `json:"resource,omitempty"`
	Identifier   string           `json:"identifier,omitempty"`
	Size         int64            `json:"size"`
	Dependencies []DependencyStat `json:"dependencies,omitempty"`
}

// DependencyStat describes one outgoing connection. Active defaults to true.
type DependencyStat struct {
	Module string `json:"module"`
	Weak   bool   `json:"weak,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

// EntryStat describes one entry node. Parents are derived from children.
type EntryStat struct {
	Module   string   `json:"module"`
	Children []string `json:"children,omitempty"`
}

// AssetStat describes one emitted output file.
type AssetStat struct {
	Name    string   `json:"name"`
	Size    int64    `json:"size"`
	Type    string   `json:"type,omitempty"`
	Modules []string `json:"modules,omitempty"`
}

// Load reads a stats document from path. A relative outputPath is resolved
// against the directory holding the stats file.
func Load(path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, reperrors.New(reperrors.IOFailure, "failed to open build stats", err)
	}
	defer func() { _ = f.Close() }()

	stats, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if stats.OutputPath == "" {
		stats.OutputPath = filepath.Dir(path)
	} else if !filepath.IsAbs(stats.OutputPath) {
		stats.OutputPath = filepath.Join(filepath.Dir(path), stats.OutputPath)
	}
	return stats, nil
}

// Decode parses a stats document.
func Decode(r io.Reader) (*Stats, error) {
	var stats Stats
	dec := json.NewDecoder(r)
	if err := dec.Decode(&stats); err != nil {
		return nil, reperrors.New(reperrors.StatsInvalid, "failed to decode build stats", err)
	}
	return &stats, nil
}

// Build is the in-memory form of Stats consumed by the analysis pass.
type Build struct {
	Graph       *graph.Graph
	Entries     *graph.EntryGraph
	Packages    *PackageResolver
	Pages       []string
	Assets      []*Asset
	OutputPath  string
	Diagnostics *reperrors.Collector
}

// Resolve links the stats into a module graph and entry graph. Dangling
// dependency targets stay unresolved; dangling entry references produce
// unresolved entry nodes and a warning.
func (s *Stats) Resolve() (*Build, error) {
	g := graph.NewGraph()
	for _, ms := range s.Modules {
		if ms.ID == "" {
			return nil, reperrors.Newf(reperrors.StatsInvalid, "module without id (resource %q)", ms.Resource)
		}
		m := &graph.Module{
			ID:         ms.ID,
			Resource:   paths.NormalizePath(ms.Resource),
			Identifier: ms.Identifier,
			Size:       ms.Size,
		}
		if err := g.AddModule(m); err != nil {
			return nil, reperrors.New(reperrors.StatsInvalid, "invalid module list", err)
		}
	}
	for _, ms := range s.Modules {
		for _, dep := range ms.Dependencies {
			inactive := dep.Active != nil && !*dep.Active
			if _, err := g.Connect(ms.ID, dep.Module, dep.Weak, inactive); err != nil {
				return nil, reperrors.New(reperrors.StatsInvalid, "invalid dependency", err)
			}
		}
	}

	diags := reperrors.NewCollector()
	entries := graph.NewEntryGraph()
	nodes := make(map[string]*graph.EntryNode, len(s.Entries))
	nodeFor := func(id string) *graph.EntryNode {
		if n, ok := nodes[id]; ok {
			return n
		}
		m, ok := g.Module(id)
		if !ok {
			diags.Warn(reperrors.MissingOwnershipLink, fmt.Sprintf("entry %q does not resolve to a module", id))
			m = nil
		}
		n := entries.AddNode(m)
		nodes[id] = n
		return n
	}
	for _, es := range s.Entries {
		nodeFor(es.Module)
	}
	for _, es := range s.Entries {
		parent := nodeFor(es.Module)
		for _, childID := range es.Children {
			if err := entries.Link(parent, nodeFor(childID)); err != nil {
				return nil, reperrors.New(reperrors.StatsInvalid, "invalid entry link", err)
			}
		}
	}

	assets := make([]*Asset, 0, len(s.Assets))
	for _, as := range s.Assets {
		if paths.IsSourceMap(as.Name) {
			continue
		}
		a := &Asset{
			Name: paths.NormalizePath(as.Name),
			Size: as.Size,
		}
		for _, id := range as.Modules {
			if m, ok := g.Module(id); ok {
				a.Modules = append(a.Modules, m)
			}
		}
		a.Kind = Classify(a.Name, len(a.Modules) > 0, as.Type)
		assets = append(assets, a)
	}

	pages := make([]string, 0, len(s.Pages))
	for _, p := range s.Pages {
		pages = append(pages, paths.NormalizePath(p))
	}

	return &Build{
		Graph:       g,
		Entries:     entries,
		Packages:    NewPackageResolver(s.Subpackages),
		Pages:       pages,
		Assets:      assets,
		OutputPath:  s.OutputPath,
		Diagnostics: diags,
	}, nil
}
