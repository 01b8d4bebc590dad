package analysis

// PackageSizeInfo accumulates the sizes attributed to one package.
type PackageSizeInfo struct {
	Size    int64
	Assets  map[string]int64
	Modules map[string]int64
}

// SizeInfo maps package name to its accumulated sizes. Entries are created
// on first use.
type SizeInfo map[string]*PackageSizeInfo

func (s SizeInfo) entry(pkg string) *PackageSizeInfo {
	info, ok := s[pkg]
	if !ok {
		info = &PackageSizeInfo{
			Assets:  make(map[string]int64),
			Modules: make(map[string]int64),
		}
		s[pkg] = info
	}
	return info
}

// AddAsset adds size under an asset name.
func (s SizeInfo) AddAsset(pkg, name string, size int64) {
	info := s.entry(pkg)
	info.Assets[name] += size
	info.Size += size
}

// AddModule adds size under a module identifier.
func (s SizeInfo) AddModule(pkg, identifier string, size int64) {
	info := s.entry(pkg)
	info.Modules[identifier] += size
	info.Size += size
}

// Total sums the size of every package.
func (s SizeInfo) Total() int64 {
	var total int64
	for _, info := range s {
		total += info.Size
	}
	return total
}

// Names returns the package names in lexical order.
func (s SizeInfo) Names() []string {
	return sortedKeys(s)
}
