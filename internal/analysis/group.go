package analysis

import (
	"fmt"

	"sizereport/internal/config"
	"sizereport/internal/graph"
	"sizereport/internal/match"
)

// AnonymousGroup names groups configured without a name.
const AnonymousGroup = "anonymous group"

// GroupSpec is the immutable definition of a report group.
type GroupSpec struct {
	Name           string
	EntryRules     *match.Matcher
	NoEntryRules   *match.Matcher
	IgnoreSubEntry bool
	Threshold      *Threshold
}

// Group is a report group together with the state accumulated during one
// pass. A fresh Group is created for every pass.
type Group struct {
	GroupSpec

	EntryModules       *graph.Set[*graph.Module]
	SelfEntryModules   *graph.Set[*graph.Module]
	SharedEntryModules *graph.Set[*graph.Module]
	NoEntryModules     *graph.Set[*graph.Module]

	SelfSize       int64
	SelfSizeInfo   SizeInfo
	SharedSize     int64
	SharedSizeInfo SizeInfo
}

func newGroup(spec GroupSpec) *Group {
	if spec.Name == "" {
		spec.Name = AnonymousGroup
	}
	return &Group{
		GroupSpec:          spec,
		EntryModules:       graph.NewSet[*graph.Module](),
		SelfEntryModules:   graph.NewSet[*graph.Module](),
		SharedEntryModules: graph.NewSet[*graph.Module](),
		NoEntryModules:     graph.NewSet[*graph.Module](),
		SelfSizeInfo:       make(SizeInfo),
		SharedSizeInfo:     make(SizeInfo),
	}
}

func (g *Group) addSelf(pkg string, it item) {
	g.SelfSize += it.size
	it.fill(g.SelfSizeInfo, pkg)
}

func (g *Group) addShared(pkg string, it item) {
	g.SharedSize += it.size
	it.fill(g.SharedSizeInfo, pkg)
}

// Options configures one analysis pass.
type Options struct {
	Groups       []GroupSpec
	ReportPages  bool
	ReportAssets bool
	Threshold    *Threshold
}

// NewOptions compiles the rules and thresholds of a loaded configuration.
func NewOptions(cfg *config.Config) (Options, error) {
	opts := Options{
		ReportPages:  cfg.ReportPages,
		ReportAssets: cfg.ReportAssets,
	}

	th, err := ParseThreshold(cfg.Threshold)
	if err != nil {
		return Options{}, &config.ConfigError{Field: "threshold", Message: err.Error()}
	}
	opts.Threshold = th

	for i, gc := range cfg.Groups {
		field := fmt.Sprintf("groups[%d]", i)
		spec := GroupSpec{Name: gc.Name, IgnoreSubEntry: gc.IgnoreSubEntry}

		if spec.EntryRules, err = match.Compile(gc.EntryRules); err != nil {
			return Options{}, &config.ConfigError{Field: field + ".entryRules", Message: err.Error()}
		}
		if gc.NoEntryRules != nil {
			if spec.NoEntryRules, err = match.Compile(*gc.NoEntryRules); err != nil {
				return Options{}, &config.ConfigError{Field: field + ".noEntryRules", Message: err.Error()}
			}
		}
		if spec.Threshold, err = ParseThreshold(gc.Threshold); err != nil {
			return Options{}, &config.ConfigError{Field: field + ".threshold", Message: err.Error()}
		}
		opts.Groups = append(opts.Groups, spec)
	}
	return opts, nil
}

// pageGroups synthesizes one group per page, matched by exact resource.
func pageGroups(pages []string) []GroupSpec {
	specs := make([]GroupSpec, 0, len(pages))
	for _, p := range pages {
		specs = append(specs, GroupSpec{Name: p, EntryRules: match.Exact(p)})
	}
	return specs
}
