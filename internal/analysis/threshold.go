package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"sizereport/internal/buildstats"
)

var (
	kibSuffix = regexp.MustCompile(`(?i)ki?b$`)
	mibSuffix = regexp.MustCompile(`(?i)mi?b$`)
)

// ParseSize converts a configured limit into bytes. Strings ending in kb/kib
// are multiplied by 1024, mb/mib by 1024*1024; anything else is a plain
// number. A zero result means "no limit".
func ParseSize(v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(math.Round(n)), nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		multiplier := 1.0
		switch {
		case kibSuffix.MatchString(s):
			multiplier = 1024
			s = kibSuffix.ReplaceAllString(s, "")
		case mibSuffix.MatchString(s):
			multiplier = 1024 * 1024
			s = mibSuffix.ReplaceAllString(s, "")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size %q", n)
		}
		return int64(math.Round(f * multiplier)), nil
	default:
		return 0, fmt.Errorf("invalid size of type %T", v)
	}
}

// Threshold holds the parsed limits for one scope.
type Threshold struct {
	// Size limits the total size; 0 disables the check.
	Size int64
	// Packages limits every package not named in PackageSizes; 0 disables.
	Packages int64
	// PackageSizes overrides the limit for individual packages.
	PackageSizes map[string]int64
}

// ParseThreshold accepts either a bare size or {size, packages}, where
// packages is a single size or a map from package name to size.
func ParseThreshold(v interface{}) (*Threshold, error) {
	if v == nil {
		return nil, nil
	}
	fields, ok := asMap(v)
	if !ok {
		size, err := ParseSize(v)
		if err != nil {
			return nil, err
		}
		return &Threshold{Size: size}, nil
	}

	th := &Threshold{}
	var err error
	if th.Size, err = ParseSize(fields["size"]); err != nil {
		return nil, fmt.Errorf("threshold.size: %w", err)
	}
	if pkgs, ok := asMap(fields["packages"]); ok {
		th.PackageSizes = make(map[string]int64, len(pkgs))
		for name, raw := range pkgs {
			limit, err := ParseSize(raw)
			if err != nil {
				return nil, fmt.Errorf("threshold.packages.%s: %w", name, err)
			}
			th.PackageSizes[name] = limit
		}
	} else if th.Packages, err = ParseSize(fields["packages"]); err != nil {
		return nil, fmt.Errorf("threshold.packages: %w", err)
	}
	return th, nil
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func (t *Threshold) packageLimit(name string) int64 {
	if t.PackageSizes != nil {
		return t.PackageSizes[name]
	}
	return t.Packages
}

// Violation is one exceeded limit.
type Violation struct {
	Group   string `json:"group,omitempty"`
	Package string `json:"package,omitempty"`
	Size    int64  `json:"size"`
	Limit   int64  `json:"limit"`
	Message string `json:"message"`
}

// Check compares a total and its per-package breakdown against t. An empty
// group name means the whole bundle. Check never fails; it only reports.
func Check(t *Threshold, total int64, info SizeInfo, group string) []Violation {
	if t == nil {
		return nil
	}
	prefix := "whole bundle"
	if group != "" {
		prefix = fmt.Sprintf("report group %q", group)
	}

	var out []Violation
	if t.Size > 0 && total > t.Size {
		out = append(out, Violation{
			Group:   group,
			Size:    total,
			Limit:   t.Size,
			Message: fmt.Sprintf("%s total size (%dB) exceeds the configured threshold (%dB), please check!", prefix, total, t.Size),
		})
	}

	for _, name := range info.Names() {
		limit := t.packageLimit(name)
		size := info[name].Size
		if limit <= 0 || size <= limit {
			continue
		}
		out = append(out, Violation{
			Group:   group,
			Package: name,
			Size:    size,
			Limit:   limit,
			Message: fmt.Sprintf("%s %s size (%dB) exceeds the configured threshold (%dB), please check!", prefix, packageLabel(name), size, limit),
		})
	}
	return out
}

func packageLabel(name string) string {
	if name == buildstats.MainPackage {
		return "main package"
	}
	return name + " subpackage"
}

// sortedKeys returns map keys in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
