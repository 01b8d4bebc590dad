// Package bundleparse recovers the byte span of every module inside a
// combined script bundle.
package bundleparse

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"sizereport/internal/paths"
)

// Span is a half-open byte range [Start, End) inside a bundle.
type Span struct {
	Start int
	End   int
}

// Size returns the number of bytes covered by the span.
func (s Span) Size() int64 {
	if s.End <= s.Start {
		return 0
	}
	return int64(s.End - s.Start)
}

// Spans maps a build module id to its span.
type Spans map[string]Span

// Total returns the summed size of every span.
func (s Spans) Total() int64 {
	var total int64
	for _, sp := range s {
		total += sp.Size()
	}
	return total
}

// Parser reads bundles below an output directory and parses them with the
// tree-sitter JavaScript grammar. Identical bundle contents are parsed once.
// A Parser is safe for concurrent use.
type Parser struct {
	root string

	mu     sync.Mutex
	parser *sitter.Parser
	cache  map[uint64]Spans
}

// NewParser creates a parser resolving asset names against outputPath.
func NewParser(outputPath string) *Parser {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &Parser{
		root:   outputPath,
		parser: p,
		cache:  make(map[uint64]Spans),
	}
}

// ModuleSpans reads the named asset and returns its module spans. Read
// errors are wrapped so callers can detect missing files with errors.Is.
func (p *Parser) ModuleSpans(ctx context.Context, assetName string) (Spans, error) {
	data, err := os.ReadFile(paths.JoinRootPath(p.root, assetName))
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", assetName, err)
	}
	return p.Parse(ctx, data)
}

// Parse returns the module spans of an in-memory bundle. A bundle that
// parses cleanly but holds no module table yields an empty result; a bundle
// with syntax errors and no recognisable table is an error.
func (p *Parser) Parse(ctx context.Context, src []byte) (Spans, error) {
	key := xxhash.Sum64(src)

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.cache[key]; ok {
		return cached.clone(), nil
	}

	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	root := tree.RootNode()

	spans := make(Spans)
	for _, table := range findModuleTables(root, src) {
		collectTable(table, src, spans)
	}

	if len(spans) == 0 && root.HasError() {
		return nil, fmt.Errorf("parse bundle: no module table found in malformed script")
	}

	p.cache[key] = spans
	return spans.clone(), nil
}

func (s Spans) clone() Spans {
	out := make(Spans, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// findModuleTables returns every object/array literal that maps module ids
// to module factories. Matched subtrees are not searched again, so code inside
// a module body that happens to call push() is never mistaken for a table.
func findModuleTables(root *sitter.Node, src []byte) []*sitter.Node {
	var tables []*sitter.Node
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if table := moduleTableOf(n, src); table != nil {
			tables = append(tables, table)
			continue
		}
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}
	return tables
}

// moduleTableOf recognises the three shapes bundles use:
//
//	(self.webpackChunk = ...).push([[ids], {id: factory}])
//	(function (modules) { ... })({id: factory})
//	var __webpack_modules__ = ({id: factory})
func moduleTableOf(n *sitter.Node, src []byte) *sitter.Node {
	switch n.Type() {
	case "call_expression":
		fn := unwrap(n.ChildByFieldName("function"))
		args := n.ChildByFieldName("arguments")
		if fn == nil || args == nil || args.NamedChildCount() == 0 {
			return nil
		}
		first := unwrap(args.NamedChild(0))

		if fn.Type() == "member_expression" {
			prop := fn.ChildByFieldName("property")
			if prop == nil || prop.Type() != "property_identifier" || prop.Content(src) != "push" {
				return nil
			}
			if first.Type() != "array" || first.NamedChildCount() < 2 {
				return nil
			}
			if table := unwrap(first.NamedChild(1)); isTable(table) {
				return table
			}
			return nil
		}
		if isFunction(fn) && isTable(first) && hasFactory(first) {
			return first
		}
	case "variable_declarator":
		name := n.ChildByFieldName("name")
		value := unwrap(n.ChildByFieldName("value"))
		if name != nil && value != nil && isTable(value) && strings.Contains(name.Content(src), "webpack_modules") {
			return value
		}
	}
	return nil
}

func unwrap(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	return n
}

func isTable(n *sitter.Node) bool {
	return n != nil && (n.Type() == "object" || n.Type() == "array")
}

func isFunction(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "function", "function_expression", "arrow_function":
		return true
	}
	return false
}

func hasFactory(table *sitter.Node) bool {
	for i := 0; i < int(table.NamedChildCount()); i++ {
		child := table.NamedChild(i)
		if child.Type() == "pair" {
			child = child.ChildByFieldName("value")
		}
		if isFunction(unwrap(child)) {
			return true
		}
	}
	return false
}

func collectTable(table *sitter.Node, src []byte, out Spans) {
	if table.Type() == "object" {
		for i := 0; i < int(table.NamedChildCount()); i++ {
			pair := table.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			value := pair.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			id := strings.Trim(key.Content(src), "\"'`")
			out[id] = Span{Start: int(value.StartByte()), End: int(value.EndByte())}
		}
		return
	}

	// Arrays index modules by position; holes are consecutive commas.
	index := 0
	for i := 0; i < int(table.ChildCount()); i++ {
		child := table.Child(i)
		switch {
		case child.Type() == ",":
			index++
		case child.IsNamed() && child.Type() != "comment":
			out[fmt.Sprint(index)] = Span{Start: int(child.StartByte()), End: int(child.EndByte())}
		}
	}
}
