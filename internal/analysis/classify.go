package analysis

import (
	"fmt"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/graph"
)

// Classification splits the entry family of a group into modules owned only
// by the group and modules it shares with others.
type Classification struct {
	Self   *graph.Set[*graph.Module]
	Shared *graph.Set[*graph.Module]
}

// Classify resolves roots to entry nodes and, unless ignoreSubEntry is set,
// propagates ownership to child entries. A child is self only when every one
// of its parents is self at the moment it is examined, and shared otherwise.
// Roots without an entry node are self directly. Once placed, a node is never
// moved.
func Classify(roots []*graph.Module, index graph.EntryIndex, ignoreSubEntry bool, diags *reperrors.Collector) Classification {
	self := graph.NewSet[*graph.EntryNode]()
	shared := graph.NewSet[*graph.EntryNode]()
	var otherSelf []*graph.Module

	for _, root := range roots {
		if node, ok := index.Node(root); ok {
			self.Add(node)
		} else {
			otherSelf = append(otherSelf, root)
		}
	}

	if !ignoreSubEntry {
		propagate(self, shared)
	}

	out := Classification{
		Self:   graph.NewSet[*graph.Module](),
		Shared: graph.NewSet[*graph.Module](),
	}
	resolve := func(nodes *graph.Set[*graph.EntryNode], into *graph.Set[*graph.Module]) {
		for _, n := range nodes.Items() {
			if n.Module == nil {
				if diags != nil {
					diags.Warn(reperrors.MissingOwnershipLink, "entry node has no resolved module, skipped")
				}
				continue
			}
			into.Add(n.Module)
		}
	}
	resolve(self, out.Self)
	resolve(shared, out.Shared)
	for _, m := range otherSelf {
		out.Self.Add(m)
	}
	return out
}

// propagate runs a breadth-first scan from the self nodes. Each child is
// classified the first time it is examined: self when every parent is already
// self, shared otherwise. Shared nodes are not expanded.
func propagate(self, shared *graph.Set[*graph.EntryNode]) {
	unanimous := func(n *graph.EntryNode) bool {
		for _, p := range n.Parents {
			if !self.Has(p) {
				return false
			}
		}
		return true
	}

	queue := append([]*graph.EntryNode(nil), self.Items()...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, child := range n.Children {
			if self.Has(child) || shared.Has(child) {
				continue
			}
			if unanimous(child) {
				self.Add(child)
				queue = append(queue, child)
			} else {
				shared.Add(child)
			}
		}
	}
}

func describeGroup(g *Group) string {
	return fmt.Sprintf("report group %q", g.Name)
}
