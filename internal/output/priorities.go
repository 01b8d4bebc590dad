package output

import reperrors "sizereport/internal/errors"

// SeverityPriority defines the ordering priority for diagnostic severities
// Lower numbers have higher priority (sorted first)
var SeverityPriority = map[reperrors.Severity]int{
	reperrors.SeverityError:   1,
	reperrors.SeverityWarning: 2,
}

// GetSeverityPriority returns the priority for a given severity
// Unknown severities sort last
func GetSeverityPriority(severity reperrors.Severity) int {
	if priority, ok := SeverityPriority[severity]; ok {
		return priority
	}
	return len(SeverityPriority) + 1
}
