// Package output turns the raw result of an analysis pass into the report
// document and writes it.
//
// # Formatting
//
// Every byte count is rendered as "<n/1024 with two decimals>KiB", so 2048
// becomes "2.00KiB" and 1536 becomes "1.50KiB". Listings of assets and
// modules are sorted by size descending, then by name, strictly before they
// are formatted.
//
// # Encoding
//
// Reports are encoded deterministically: object keys are sorted, nil and
// empty values are omitted, and identical results produce byte-identical
// files. CompareSnapshots compares two reports while ignoring the fields
// that change on every run (title and generatedAt).
//
// # Shape
//
//	{
//	  "sizeSummary":    {...},  // totals, per-package sizes, group rollups
//	  "groupsSizeInfo": [...],  // per-group self/shared breakdown
//	  "pagesSizeInfo":  [...],  // when reportPages is enabled
//	  "assetsSizeInfo": {...},  // when reportAssets is enabled
//	  "diagnostics":    [...]   // collected warnings and errors
//	}
package output
