// Package match decides whether a module resource satisfies a report group's
// include/exclude rules.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"sizereport/internal/paths"
)

const regexpPrefix = "re:"

// Rules is the include/exclude condition attached to a report group.
type Rules struct {
	Include []string `json:"include,omitempty" mapstructure:"include" yaml:"include,omitempty" toml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" mapstructure:"exclude" yaml:"exclude,omitempty" toml:"exclude,omitempty"`
}

// Empty reports whether no include pattern is configured.
func (r Rules) Empty() bool {
	return len(r.Include) == 0
}

// Matcher is a compiled Rules value.
type Matcher struct {
	include []pattern
	exclude []pattern
}

type pattern struct {
	raw   string
	re    *regexp.Regexp
	glob  bool
	exact bool
}

// Compile validates and compiles rules. Patterns prefixed with "re:" are
// regular expressions, patterns containing glob metacharacters are doublestar
// globs, and anything else matches the exact path or a directory prefix.
func Compile(r Rules) (*Matcher, error) {
	m := &Matcher{}
	for _, raw := range r.Include {
		p, err := compilePattern(raw)
		if err != nil {
			return nil, err
		}
		m.include = append(m.include, p)
	}
	for _, raw := range r.Exclude {
		p, err := compilePattern(raw)
		if err != nil {
			return nil, err
		}
		m.exclude = append(m.exclude, p)
	}
	return m, nil
}

// MustCompile is like Compile but panics on invalid patterns.
func MustCompile(r Rules) *Matcher {
	m, err := Compile(r)
	if err != nil {
		panic(err)
	}
	return m
}

// Exact returns a matcher for a single resource path. Unlike literal rule
// patterns it does not match files below the path.
func Exact(resource string) *Matcher {
	return &Matcher{include: []pattern{{raw: paths.NormalizePath(resource), exact: true}}}
}

func compilePattern(raw string) (pattern, error) {
	if strings.HasPrefix(raw, regexpPrefix) {
		re, err := regexp.Compile(strings.TrimPrefix(raw, regexpPrefix))
		if err != nil {
			return pattern{}, fmt.Errorf("invalid regular expression %q: %w", raw, err)
		}
		return pattern{raw: raw, re: re}, nil
	}
	normalized := paths.NormalizePath(raw)
	if strings.ContainsAny(normalized, "*?[{") {
		if !doublestar.ValidatePattern(normalized) {
			return pattern{}, fmt.Errorf("invalid glob pattern %q", raw)
		}
		return pattern{raw: normalized, glob: true}, nil
	}
	return pattern{raw: strings.TrimSuffix(normalized, "/")}, nil
}

func (p pattern) match(resource string) bool {
	switch {
	case p.re != nil:
		return p.re.MatchString(resource)
	case p.glob:
		ok, _ := doublestar.Match(p.raw, resource)
		return ok
	case p.exact:
		return resource == p.raw
	default:
		return resource == p.raw || strings.HasPrefix(resource, p.raw+"/")
	}
}

// Match reports whether resource is included and not excluded. A matcher
// without include patterns matches nothing.
func (m *Matcher) Match(resource string) bool {
	if m == nil || len(m.include) == 0 || resource == "" {
		return false
	}
	resource = paths.NormalizePath(resource)
	included := false
	for _, p := range m.include {
		if p.match(resource) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range m.exclude {
		if p.match(resource) {
			return false
		}
	}
	return true
}

