package output

import (
	"sort"

	reperrors "sizereport/internal/errors"
)

// Sized is a raw listing entry awaiting formatting.
type Sized struct {
	Name string
	Size int64
}

// SortBySize sorts entries by size DESC, name ASC.
func SortBySize(entries []Sized) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		return entries[i].Name < entries[j].Name
	})
}

// SizedFromMap flattens a name -> size map and sorts it.
func SizedFromMap(m map[string]int64) []Sized {
	out := make([]Sized, 0, len(m))
	for name, size := range m {
		out = append(out, Sized{Name: name, Size: size})
	}
	SortBySize(out)
	return out
}

// SortDiagnostics sorts diagnostics by severity, keeping recording order
// within a severity.
func SortDiagnostics(diags []reperrors.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return GetSeverityPriority(diags[i].Severity) < GetSeverityPriority(diags[j].Severity)
	})
}
