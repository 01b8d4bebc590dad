// Package analysis attributes the output size of a build to report groups
// and packages.
//
// A pass runs in three phases. Chunk bundles are read and parsed first so
// that the rest of the pass is pure computation. Ownership walks then annotate
// every reachable module with the entry and non-entry roots that reach it,
// and each group classifies its entry family into self and shared. Finally
// every asset is aggregated into package, category and group totals, and the
// thresholds are checked.
package analysis

import (
	"context"
	"fmt"

	"sizereport/internal/bundleparse"
	"sizereport/internal/buildstats"
	reperrors "sizereport/internal/errors"
	"sizereport/internal/graph"
	"sizereport/internal/logging"
)

// SpanSource recovers module spans from a chunk bundle.
type SpanSource interface {
	ModuleSpans(ctx context.Context, assetName string) (bundleparse.Spans, error)
}

// Input is everything one pass reads.
type Input struct {
	Build   *buildstats.Build
	Spans   SpanSource
	Options Options
}

// Result is the raw outcome of a pass, before formatting.
type Result struct {
	Summary      Summary
	Groups       []*Group
	Pages        []*Group
	Assets       []AssetInfo
	ReportAssets bool
	Violations   []Violation
	Diagnostics  *reperrors.Collector
}

// Analyzer runs analysis passes.
type Analyzer struct {
	logger *logging.Logger
}

// NewAnalyzer creates an analyzer logging to logger.
func NewAnalyzer(logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Analyzer{logger: logger}
}

// Run executes one pass. Parse failures, missing links and threshold
// violations are collected in the result; only invalid input and
// cancellation while reading bundles are returned as errors.
func (a *Analyzer) Run(ctx context.Context, in Input) (*Result, error) {
	b := in.Build
	if b == nil {
		return nil, reperrors.New(reperrors.InternalError, "analysis needs a resolved build", nil)
	}
	diags := b.Diagnostics
	if diags == nil {
		diags = reperrors.NewCollector()
	}

	a.logger.Info("Starting size analysis", map[string]interface{}{
		"modules": b.Graph.Len(),
		"entries": len(b.Entries.Nodes()),
		"assets":  len(b.Assets),
	})

	spans, err := a.readSpans(ctx, b, in.Spans)
	if err != nil {
		return nil, err
	}

	own := make(ownership)
	roots := entryRoots(b)
	for _, root := range roots {
		own.walkEntry(root)
	}

	specs := in.Options.Groups
	var pageSpecs []GroupSpec
	if in.Options.ReportPages {
		pageSpecs = pageGroups(b.Pages)
	}

	walked := graph.NewSet[*graph.Module]()
	build := func(specs []GroupSpec) []*Group {
		groups := make([]*Group, 0, len(specs))
		for _, spec := range specs {
			g := newGroup(spec)
			a.collectRoots(g, b, roots, own, walked)
			if g.EntryModules.Len() == 0 && g.NoEntryModules.Len() == 0 {
				diags.Warn(reperrors.MissingOwnershipLink, describeGroup(g)+" matched no modules")
			}
			c := Classify(g.EntryModules.Items(), b.Entries, g.IgnoreSubEntry, diags)
			g.SelfEntryModules = c.Self
			g.SharedEntryModules = c.Shared
			groups = append(groups, g)
		}
		return groups
	}
	groups := build(specs)
	pages := build(pageSpecs)

	all := make([]*Group, 0, len(groups)+len(pages))
	all = append(all, groups...)
	all = append(all, pages...)

	agg := newAggregator(b, own, all, spans, diags)
	for _, asset := range b.Assets {
		agg.add(asset)
	}

	res := &Result{
		Summary:      agg.summary,
		Groups:       groups,
		Pages:        pages,
		Assets:       agg.assets,
		ReportAssets: in.Options.ReportAssets,
		Diagnostics:  diags,
	}

	res.Violations = append(res.Violations, Check(in.Options.Threshold, res.Summary.TotalSize, res.Summary.SizeInfo, "")...)
	for _, g := range groups {
		res.Violations = append(res.Violations, Check(g.Threshold, g.SelfSize, g.SelfSizeInfo, g.Name)...)
	}
	for _, v := range res.Violations {
		diags.Error(reperrors.ThresholdViolation, v.Message)
		a.logger.Warn("Size threshold exceeded", map[string]interface{}{
			"group":   v.Group,
			"package": v.Package,
			"size":    v.Size,
			"limit":   v.Limit,
		})
	}

	a.logger.Info("Size analysis complete", map[string]interface{}{
		"totalSize":  res.Summary.TotalSize,
		"staticSize": res.Summary.StaticSize,
		"chunkSize":  res.Summary.ChunkSize,
		"copySize":   res.Summary.CopySize,
		"violations": len(res.Violations),
		"errors":     len(diags.Errors()),
		"warnings":   len(diags.Warnings()),
	})
	return res, nil
}

// readSpans parses every chunk up front. Per-asset failures are kept for the
// aggregator to report.
func (a *Analyzer) readSpans(ctx context.Context, b *buildstats.Build, src SpanSource) (map[string]spanResult, error) {
	out := make(map[string]spanResult)
	for _, asset := range b.Assets {
		if asset.Kind != buildstats.KindChunk {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if src == nil {
			out[asset.Name] = spanResult{err: fmt.Errorf("no bundle parser configured")}
			continue
		}
		spans, err := src.ModuleSpans(ctx, asset.Name)
		if err != nil {
			a.logger.Warn("Failed to parse bundle", map[string]interface{}{
				"asset": asset.Name,
				"error": err.Error(),
			})
		}
		out[asset.Name] = spanResult{spans: spans, err: err}
	}
	return out, nil
}

// entryRoots returns the entry modules plus page modules the build listed
// without an entry node.
func entryRoots(b *buildstats.Build) []*graph.Module {
	roots := graph.NewSet(b.Entries.EntryModules()...)
	if len(b.Pages) > 0 {
		pages := graph.NewSet(b.Pages...)
		for _, m := range b.Graph.Modules() {
			if m.Resource != "" && pages.Has(m.Resource) {
				roots.Add(m)
			}
		}
	}
	return roots.Items()
}

func (a *Analyzer) collectRoots(g *Group, b *buildstats.Build, roots []*graph.Module, own ownership, walked *graph.Set[*graph.Module]) {
	for _, root := range roots {
		if g.EntryRules.Match(root.Resource) {
			g.EntryModules.Add(root)
		}
	}
	if g.NoEntryRules != nil {
		for _, m := range b.Graph.Modules() {
			if !g.NoEntryRules.Match(m.Resource) {
				continue
			}
			g.NoEntryModules.Add(m)
			if walked.Add(m) {
				own.walkNoEntry(m)
			}
		}
	}
	a.logger.Debug("Collected group roots", map[string]interface{}{
		"group":   g.Name,
		"entries": g.EntryModules.Len(),
		"noEntry": g.NoEntryModules.Len(),
	})
}
