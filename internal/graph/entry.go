package graph

import "fmt"

// EntryNode wraps an entry module and links it to the entries that pull it in
// (parents) and the entries it pulls in (children). The links form a DAG in
// well-formed builds; cycles are tolerated by every consumer.
type EntryNode struct {
	Module   *Module
	Parents  []*EntryNode
	Children []*EntryNode
}

// EntryIndex resolves an entry module to its structural node.
type EntryIndex interface {
	Node(m *Module) (*EntryNode, bool)
}

// EntryGraph is the arena of entry nodes for one build.
type EntryGraph struct {
	nodes    []*EntryNode
	byModule map[*Module]*EntryNode
}

// NewEntryGraph creates an empty entry graph.
func NewEntryGraph() *EntryGraph {
	return &EntryGraph{byModule: make(map[*Module]*EntryNode)}
}

// AddNode registers a node for m, returning the existing node when m is
// already known. A nil module produces an unresolved node that is kept in the
// arena but cannot be looked up.
func (eg *EntryGraph) AddNode(m *Module) *EntryNode {
	if m != nil {
		if n, ok := eg.byModule[m]; ok {
			return n
		}
	}
	n := &EntryNode{Module: m}
	eg.nodes = append(eg.nodes, n)
	if m != nil {
		eg.byModule[m] = n
	}
	return n
}

// Link records child as pulled in by parent. Duplicate links are ignored.
func (eg *EntryGraph) Link(parent, child *EntryNode) error {
	if parent == nil || child == nil {
		return fmt.Errorf("cannot link nil entry node")
	}
	for _, c := range parent.Children {
		if c == child {
			return nil
		}
	}
	parent.Children = append(parent.Children, child)
	child.Parents = append(child.Parents, parent)
	return nil
}

// Node implements EntryIndex.
func (eg *EntryGraph) Node(m *Module) (*EntryNode, bool) {
	n, ok := eg.byModule[m]
	return n, ok
}

// Nodes returns every node in registration order.
func (eg *EntryGraph) Nodes() []*EntryNode {
	return eg.nodes
}

// EntryModules returns the resolved module of every node.
func (eg *EntryGraph) EntryModules() []*Module {
	out := make([]*Module, 0, len(eg.nodes))
	for _, n := range eg.nodes {
		if n.Module != nil {
			out = append(out, n.Module)
		}
	}
	return out
}
