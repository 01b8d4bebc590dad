package output

import reperrors "sizereport/internal/errors"

// Report is the document written after a pass.
type Report struct {
	Title          string                 `json:"title,omitempty"`
	GeneratedAt    string                 `json:"generatedAt,omitempty"`
	SizeSummary    SizeSummary            `json:"sizeSummary"`
	GroupsSizeInfo []GroupSizeInfo        `json:"groupsSizeInfo,omitempty"`
	PagesSizeInfo  []GroupSizeInfo        `json:"pagesSizeInfo,omitempty"`
	AssetsSizeInfo *AssetsSizeInfo        `json:"assetsSizeInfo,omitempty"`
	Diagnostics    []reperrors.Diagnostic `json:"diagnostics,omitempty"`
}

// SizeSummary holds the grand totals.
type SizeSummary struct {
	TotalSize  string                 `json:"totalSize"`
	TotalBytes int64                  `json:"totalBytes"`
	StaticSize string                 `json:"staticSize"`
	ChunkSize  string                 `json:"chunkSize"`
	CopySize   string                 `json:"copySize"`
	SizeInfo   map[string]PackageSize `json:"sizeInfo,omitempty"`
	Groups     []GroupSummary         `json:"groups,omitempty"`
}

// PackageSize is the formatted breakdown of one package.
type PackageSize struct {
	Size    string        `json:"size"`
	Assets  []AssetSize   `json:"assets,omitempty"`
	Modules []ModuleEntry `json:"modules,omitempty"`
}

// AssetSize is one asset with its size.
type AssetSize struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// ModuleEntry is one module identifier with its size.
type ModuleEntry struct {
	Identifier string `json:"identifier"`
	Size       string `json:"size"`
}

// GroupSummary is the rollup of one report group.
type GroupSummary struct {
	Name        string `json:"name"`
	SelfSize    string `json:"selfSize"`
	SharedSize  string `json:"sharedSize"`
	SelfBytes   int64  `json:"selfBytes"`
	SharedBytes int64  `json:"sharedBytes"`
}

// GroupSizeInfo is the detailed breakdown of one report group.
type GroupSizeInfo struct {
	Name           string                 `json:"name"`
	SelfSize       string                 `json:"selfSize"`
	SelfSizeInfo   map[string]PackageSize `json:"selfSizeInfo,omitempty"`
	SharedSize     string                 `json:"sharedSize"`
	SharedSizeInfo map[string]PackageSize `json:"sharedSizeInfo,omitempty"`
}

// AssetsSizeInfo lists every output file.
type AssetsSizeInfo struct {
	Assets []AssetEntry `json:"assets"`
}

// AssetEntry is one output file and the modules attributed inside it.
type AssetEntry struct {
	Type        string        `json:"type"`
	Name        string        `json:"name"`
	PackageName string        `json:"packageName"`
	Size        string        `json:"size"`
	Modules     []ModuleEntry `json:"modules,omitempty"`
}
