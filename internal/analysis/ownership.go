package analysis

import "sizereport/internal/graph"

// owners is the per-module annotation computed by the ownership walks.
type owners struct {
	entry   *graph.Set[*graph.Module]
	noEntry *graph.Set[*graph.Module]
}

// ownership maps modules to their owner sets for one pass. Modules never
// reached have no entry; lookups of them return a nil set, which reads as
// empty.
type ownership map[*graph.Module]*owners

func (o ownership) of(m *graph.Module) *owners {
	own, ok := o[m]
	if !ok {
		own = &owners{
			entry:   graph.NewSet[*graph.Module](),
			noEntry: graph.NewSet[*graph.Module](),
		}
		o[m] = own
	}
	return own
}

// entryOwners returns the entry roots that reach m.
func (o ownership) entryOwners(m *graph.Module) *graph.Set[*graph.Module] {
	if own, ok := o[m]; ok {
		return own.entry
	}
	return nil
}

// noEntryOwners returns the non-entry roots that reach m.
func (o ownership) noEntryOwners(m *graph.Module) *graph.Set[*graph.Module] {
	if own, ok := o[m]; ok {
		return own.noEntry
	}
	return nil
}

// walkEntry records root as an entry owner of everything it reaches.
func (o ownership) walkEntry(root *graph.Module) int {
	return graph.Walk(root, func(m, r *graph.Module) {
		o.of(m).entry.Add(r)
	})
}

// walkNoEntry records root as a non-entry owner of everything it reaches.
func (o ownership) walkNoEntry(root *graph.Module) int {
	return graph.Walk(root, func(m, r *graph.Module) {
		o.of(m).noEntry.Add(r)
	})
}
