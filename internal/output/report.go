package output

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"sizereport/internal/analysis"
	reperrors "sizereport/internal/errors"
	"sizereport/internal/paths"
)

// Meta carries the run-specific fields of a report.
type Meta struct {
	Title       string
	GeneratedAt time.Time
}

// Build assembles the report from a pass result. The detailed page and asset
// sections appear only when the pass produced them.
func Build(res *analysis.Result, meta Meta) *Report {
	r := &Report{
		Title: meta.Title,
		SizeSummary: SizeSummary{
			TotalSize:  FormatKiB(res.Summary.TotalSize),
			TotalBytes: res.Summary.TotalSize,
			StaticSize: FormatKiB(res.Summary.StaticSize),
			ChunkSize:  FormatKiB(res.Summary.ChunkSize),
			CopySize:   FormatKiB(res.Summary.CopySize),
			SizeInfo:   formatSizeInfo(res.Summary.SizeInfo),
		},
	}
	if !meta.GeneratedAt.IsZero() {
		r.GeneratedAt = meta.GeneratedAt.UTC().Format(time.RFC3339)
	}

	for _, g := range res.Groups {
		r.SizeSummary.Groups = append(r.SizeSummary.Groups, GroupSummary{
			Name:        g.Name,
			SelfSize:    FormatKiB(g.SelfSize),
			SharedSize:  FormatKiB(g.SharedSize),
			SelfBytes:   g.SelfSize,
			SharedBytes: g.SharedSize,
		})
		r.GroupsSizeInfo = append(r.GroupsSizeInfo, formatGroup(g))
	}
	for _, g := range res.Pages {
		r.PagesSizeInfo = append(r.PagesSizeInfo, formatGroup(g))
	}
	if res.ReportAssets {
		r.AssetsSizeInfo = formatAssets(res.Assets)
	}
	if res.Diagnostics != nil {
		r.Diagnostics = res.Diagnostics.All()
		SortDiagnostics(r.Diagnostics)
	}
	return r
}

func formatGroup(g *analysis.Group) GroupSizeInfo {
	return GroupSizeInfo{
		Name:           g.Name,
		SelfSize:       FormatKiB(g.SelfSize),
		SelfSizeInfo:   formatSizeInfo(g.SelfSizeInfo),
		SharedSize:     FormatKiB(g.SharedSize),
		SharedSizeInfo: formatSizeInfo(g.SharedSizeInfo),
	}
}

func formatSizeInfo(info analysis.SizeInfo) map[string]PackageSize {
	if len(info) == 0 {
		return nil
	}
	out := make(map[string]PackageSize, len(info))
	for name, pkg := range info {
		ps := PackageSize{Size: FormatKiB(pkg.Size)}
		for _, s := range SizedFromMap(pkg.Assets) {
			ps.Assets = append(ps.Assets, AssetSize{Name: s.Name, Size: FormatKiB(s.Size)})
		}
		ps.Modules = formatModules(SizedFromMap(pkg.Modules))
		out[name] = ps
	}
	return out
}

func formatModules(sorted []Sized) []ModuleEntry {
	var out []ModuleEntry
	for _, s := range sorted {
		out = append(out, ModuleEntry{Identifier: s.Name, Size: FormatKiB(s.Size)})
	}
	return out
}

func formatAssets(assets []analysis.AssetInfo) *AssetsSizeInfo {
	order := make([]int, len(assets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := assets[order[i]], assets[order[j]]
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return a.Name < b.Name
	})

	out := &AssetsSizeInfo{Assets: make([]AssetEntry, 0, len(assets))}
	for _, idx := range order {
		a := assets[idx]
		modules := make([]Sized, 0, len(a.Modules))
		for _, m := range a.Modules {
			modules = append(modules, Sized{Name: m.Identifier, Size: m.Size})
		}
		SortBySize(modules)
		out.Assets = append(out.Assets, AssetEntry{
			Type:        string(a.Kind),
			Name:        a.Name,
			PackageName: a.Package,
			Size:        FormatKiB(a.Size),
			Modules:     formatModules(modules),
		})
	}
	return out
}

// Encode renders the report as indented, deterministic UTF-8 JSON.
func Encode(r *Report) ([]byte, error) {
	return DeterministicEncodeIndented(r, "  ")
}

// WriteFile writes the report to path, creating parent directories.
func WriteFile(path string, r *Report) error {
	data, err := Encode(r)
	if err != nil {
		return reperrors.New(reperrors.InternalError, "failed to encode report", err)
	}
	if err := paths.EnsureParentDir(path); err != nil {
		return reperrors.New(reperrors.IOFailure, "failed to create report directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return reperrors.New(reperrors.IOFailure, "failed to write report", err)
	}
	return nil
}

// ReadFile loads a report written by WriteFile.
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, reperrors.New(reperrors.ReportNotFound, "report file does not exist", err)
		}
		return nil, reperrors.New(reperrors.IOFailure, "failed to open report", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode parses a report document.
func Decode(r io.Reader) (*Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, reperrors.New(reperrors.InternalError, "failed to decode report", err)
	}
	return &rep, nil
}

// Violations counts the threshold violations recorded in the report.
func (r *Report) Violations() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Code == reperrors.ThresholdViolation {
			n++
		}
	}
	return n
}
