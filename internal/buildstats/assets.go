package buildstats

import (
	"sort"
	"strings"

	"sizereport/internal/graph"
	"sizereport/internal/paths"
)

// AssetKind tags how an output file is attributed.
type AssetKind string

const (
	// KindStatic is a non-script file produced from known modules.
	KindStatic AssetKind = "static"
	// KindChunk is a script bundle whose modules are recovered by parsing.
	KindChunk AssetKind = "chunk"
	// KindCopy is an opaque copied file with no module attribution.
	KindCopy AssetKind = "copy"
)

// MainPackage is the fallback package for files outside every subpackage.
const MainPackage = "main"

// Asset is one emitted output file.
type Asset struct {
	Name    string
	Size    int64
	Kind    AssetKind
	Modules []*graph.Module
}

// Classify picks the attribution kind of an output file. Files carrying
// contributing modules are static even when named like scripts, so a static
// asset is never handed to the bundle parser. An explicit "copy" hint wins
// only for files without modules.
func Classify(name string, hasModules bool, hint string) AssetKind {
	switch {
	case hasModules:
		return KindStatic
	case AssetKind(hint) == KindCopy:
		return KindCopy
	case paths.IsScript(name):
		return KindChunk
	default:
		return KindCopy
	}
}

// PackageResolver maps an output path to its subpackage.
type PackageResolver struct {
	roots []packageRoot
}

type packageRoot struct {
	name string
	root string
}

// NewPackageResolver builds a resolver from subpackage name -> root prefix.
// Longer roots are tried first so nested subpackages win over their parents.
func NewPackageResolver(subpackages map[string]string) *PackageResolver {
	r := &PackageResolver{}
	for name, root := range subpackages {
		root = strings.Trim(paths.NormalizePath(root), "/")
		if root == "" {
			continue
		}
		r.roots = append(r.roots, packageRoot{name: name, root: root})
	}
	sort.Slice(r.roots, func(i, j int) bool {
		if len(r.roots[i].root) != len(r.roots[j].root) {
			return len(r.roots[i].root) > len(r.roots[j].root)
		}
		return r.roots[i].name < r.roots[j].name
	})
	return r
}

// PackageOf returns the subpackage owning fileName, or "main".
func (r *PackageResolver) PackageOf(fileName string) string {
	if r == nil {
		return MainPackage
	}
	fileName = strings.TrimPrefix(paths.NormalizePath(fileName), "/")
	for _, pr := range r.roots {
		if strings.HasPrefix(fileName, pr.root+"/") {
			return pr.name
		}
	}
	return MainPackage
}
