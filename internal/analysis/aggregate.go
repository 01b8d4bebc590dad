package analysis

import (
	"fmt"
	"sort"

	"sizereport/internal/bundleparse"
	"sizereport/internal/buildstats"
	reperrors "sizereport/internal/errors"
	"sizereport/internal/graph"
)

// item is one attributable size: a static asset or a module inside a chunk.
type item struct {
	identifier string
	size       int64
	entry      *graph.Set[*graph.Module]
	noEntry    *graph.Set[*graph.Module]
}

func (it item) fill(info SizeInfo, pkg string) {
	info.AddModule(pkg, it.identifier, it.size)
}

// ModuleSize is one module listed under an asset.
type ModuleSize struct {
	Identifier string
	Size       int64
}

// AssetInfo describes one output file in the per-asset listing.
type AssetInfo struct {
	Kind    buildstats.AssetKind
	Name    string
	Package string
	Size    int64
	Modules []ModuleSize
}

// Summary holds the grand totals of a pass.
type Summary struct {
	TotalSize  int64
	StaticSize int64
	ChunkSize  int64
	CopySize   int64
	SizeInfo   SizeInfo
}

// spanResult is the pre-read outcome of parsing one chunk.
type spanResult struct {
	spans bundleparse.Spans
	err   error
}

type aggregator struct {
	graph    *graph.Graph
	packages *buildstats.PackageResolver
	own      ownership
	groups   []*Group
	spans    map[string]spanResult
	diags    *reperrors.Collector

	summary Summary
	assets  []AssetInfo
}

func newAggregator(b *buildstats.Build, own ownership, groups []*Group, spans map[string]spanResult, diags *reperrors.Collector) *aggregator {
	return &aggregator{
		graph:    b.Graph,
		packages: b.Packages,
		own:      own,
		groups:   groups,
		spans:    spans,
		diags:    diags,
		summary:  Summary{SizeInfo: make(SizeInfo)},
	}
}

func (a *aggregator) add(asset *buildstats.Asset) {
	pkg := a.packages.PackageOf(asset.Name)
	info := AssetInfo{Kind: asset.Kind, Name: asset.Name, Package: pkg, Size: asset.Size}

	switch asset.Kind {
	case buildstats.KindStatic:
		it := a.staticItem(asset)
		a.attribute(pkg, it)
		info.Modules = []ModuleSize{{Identifier: it.identifier, Size: it.size}}
		a.summary.StaticSize += asset.Size
	case buildstats.KindChunk:
		info.Modules = a.chunkModules(pkg, asset)
		a.summary.ChunkSize += asset.Size
	default:
		a.summary.CopySize += asset.Size
	}

	a.summary.TotalSize += asset.Size
	a.summary.SizeInfo.AddAsset(pkg, asset.Name, asset.Size)
	a.assets = append(a.assets, info)
}

func (a *aggregator) staticItem(asset *buildstats.Asset) item {
	it := item{
		size:    asset.Size,
		entry:   graph.NewSet[*graph.Module](),
		noEntry: graph.NewSet[*graph.Module](),
	}
	identifiers := graph.NewSet[string]()
	for _, m := range asset.Modules {
		identifiers.Add(m.ReadableIdentifier())
		it.entry.Union(a.own.entryOwners(m))
		it.noEntry.Union(a.own.noEntryOwners(m))
	}
	ids := identifiers.Items()
	switch len(ids) {
	case 0:
		it.identifier = asset.Name
	case 1:
		it.identifier = ids[0]
	default:
		it.identifier = fmt.Sprintf("%s + %d modules", ids[0], len(ids)-1)
	}
	return it
}

// chunkModules attributes every parsed module of a chunk. The bytes outside
// all module spans stay unattributed.
func (a *aggregator) chunkModules(pkg string, asset *buildstats.Asset) []ModuleSize {
	res, ok := a.spans[asset.Name]
	if !ok {
		return nil
	}
	if res.err != nil {
		a.diags.Error(reperrors.ParseFailure, fmt.Sprintf("%s: %s", asset.Name, reperrors.ParseFailureMessage(res.err)))
		return nil
	}

	ids := make([]string, 0, len(res.spans))
	for id := range res.spans {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := res.spans[ids[i]], res.spans[ids[j]]
		if si.Start != sj.Start {
			return si.Start < sj.Start
		}
		return ids[i] < ids[j]
	})

	if parsed := res.spans.Total(); parsed > asset.Size {
		a.diags.Error(reperrors.ParseFailure, fmt.Sprintf(
			"%s: parsed module sizes (%dB) exceed the asset size (%dB)", asset.Name, parsed, asset.Size))
		return nil
	}

	modules := make([]ModuleSize, 0, len(ids))
	for _, id := range ids {
		size := res.spans[id].Size()
		it := item{identifier: id, size: size}
		if m, ok := a.graph.Module(id); ok {
			it.identifier = m.ReadableIdentifier()
			it.entry = a.own.entryOwners(m)
			it.noEntry = a.own.noEntryOwners(m)
		}
		a.attribute(pkg, it)
		modules = append(modules, ModuleSize{Identifier: it.identifier, Size: size})
	}
	return modules
}

// attribute places it into each group at most once, following the
// precedence: non-entry self, non-entry shared, entry self, entry shared.
func (a *aggregator) attribute(pkg string, it item) {
	for _, g := range a.groups {
		switch decide(g, it, a.own) {
		case attrSelf:
			g.addSelf(pkg, it)
		case attrShared:
			g.addShared(pkg, it)
		}
	}
}

type attribution int

const (
	attrNone attribution = iota
	attrSelf
	attrShared
)

func decide(g *Group, it item, own ownership) attribution {
	if g.NoEntryRules != nil && it.noEntry.Len() > 0 {
		inGroup := func(root *graph.Module) bool { return g.NoEntryModules.Has(root) }
		if it.noEntry.Any(inGroup) {
			exclusive := it.noEntry.Any(func(root *graph.Module) bool {
				return inGroup(root) && it.entry.SubsetOf(own.entryOwners(root))
			})
			if exclusive {
				return attrSelf
			}
			return attrShared
		}
	}
	if it.entry.Len() > 0 {
		if it.entry.SubsetOf(g.SelfEntryModules) {
			return attrSelf
		}
		if it.entry.Any(func(m *graph.Module) bool {
			return g.SelfEntryModules.Has(m) || g.SharedEntryModules.Has(m)
		}) {
			return attrShared
		}
	}
	return attrNone
}
