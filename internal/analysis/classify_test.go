package analysis

import (
	"testing"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/graph"
)

type entryFixture struct {
	eg      *graph.EntryGraph
	modules map[string]*graph.Module
	nodes   map[string]*graph.EntryNode
}

// newEntryFixture builds an entry graph from parent -> children links.
func newEntryFixture(t *testing.T, links map[string][]string, ids ...string) *entryFixture {
	t.Helper()
	f := &entryFixture{
		eg:      graph.NewEntryGraph(),
		modules: make(map[string]*graph.Module),
		nodes:   make(map[string]*graph.EntryNode),
	}
	for _, id := range ids {
		m := &graph.Module{ID: id}
		f.modules[id] = m
		f.nodes[id] = f.eg.AddNode(m)
	}
	for _, parent := range ids {
		for _, child := range links[parent] {
			if err := f.eg.Link(f.nodes[parent], f.nodes[child]); err != nil {
				t.Fatal(err)
			}
		}
	}
	return f
}

func (f *entryFixture) mods(ids ...string) []*graph.Module {
	out := make([]*graph.Module, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.modules[id])
	}
	return out
}

func ids(s *graph.Set[*graph.Module]) map[string]bool {
	out := make(map[string]bool)
	for _, m := range s.Items() {
		out[m.ID] = true
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		links      map[string][]string
		roots      []string
		ignoreSub  bool
		wantSelf   []string
		wantShared []string
	}{
		{
			name:       "sibling parents split ownership",
			links:      map[string][]string{"P1": {"S"}, "P2": {"S"}},
			roots:      []string{"P1"},
			wantSelf:   []string{"P1"},
			wantShared: []string{"S"},
		},
		{
			name:     "unanimous parents keep ownership",
			links:    map[string][]string{"P1": {"S"}, "P2": {"S"}},
			roots:    []string{"P1", "P2"},
			wantSelf: []string{"P1", "P2", "S"},
		},
		{
			name:     "diamond child examined after its other parent",
			links:    map[string][]string{"A": {"B", "C"}, "B": {"C"}},
			roots:    []string{"A"},
			wantSelf: []string{"A", "B", "C"},
		},
		{
			name:       "diamond child examined before its other parent stays shared",
			links:      map[string][]string{"A": {"C", "B"}, "B": {"C"}},
			roots:      []string{"A"},
			wantSelf:   []string{"A", "B"},
			wantShared: []string{"C"},
		},
		{
			name:       "shared node does not propagate",
			links:      map[string][]string{"A": {"S"}, "O": {"S"}, "S": {"T"}},
			roots:      []string{"A"},
			wantSelf:   []string{"A"},
			wantShared: []string{"S"},
		},
		{
			name:      "ignoreSubEntry stops at roots",
			links:     map[string][]string{"A": {"B"}},
			roots:     []string{"A"},
			ignoreSub: true,
			wantSelf:  []string{"A"},
		},
		{
			name:     "cycles terminate",
			links:    map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"B"}},
			roots:    []string{"A"},
			wantSelf: []string{"A"},
			// B has parents A and C; C is only reachable through B.
			wantShared: []string{"B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := map[string]bool{}
			for p, cs := range tt.links {
				all[p] = true
				for _, c := range cs {
					all[c] = true
				}
			}
			for _, r := range tt.roots {
				all[r] = true
			}
			var names []string
			for _, n := range []string{"A", "B", "C", "O", "P1", "P2", "S", "T"} {
				if all[n] {
					names = append(names, n)
				}
			}
			f := newEntryFixture(t, tt.links, names...)

			c := Classify(f.mods(tt.roots...), f.eg, tt.ignoreSub, nil)

			gotSelf, gotShared := ids(c.Self), ids(c.Shared)
			if len(gotSelf) != len(tt.wantSelf) {
				t.Errorf("self = %v, want %v", gotSelf, tt.wantSelf)
			}
			for _, id := range tt.wantSelf {
				if !gotSelf[id] {
					t.Errorf("%s missing from self %v", id, gotSelf)
				}
			}
			if len(gotShared) != len(tt.wantShared) {
				t.Errorf("shared = %v, want %v", gotShared, tt.wantShared)
			}
			for _, id := range tt.wantShared {
				if !gotShared[id] {
					t.Errorf("%s missing from shared %v", id, gotShared)
				}
			}
			for id := range gotSelf {
				if gotShared[id] {
					t.Errorf("%s is both self and shared", id)
				}
			}
		})
	}
}

func TestClassifyRootWithoutNode(t *testing.T) {
	f := newEntryFixture(t, nil, "A")
	synthetic := &graph.Module{ID: "page"}

	c := Classify([]*graph.Module{f.modules["A"], synthetic}, f.eg, false, nil)

	if !c.Self.Has(synthetic) || !c.Self.Has(f.modules["A"]) {
		t.Errorf("self = %v, want A and page", ids(c.Self))
	}
}

func TestClassifyUnresolvedChild(t *testing.T) {
	f := newEntryFixture(t, nil, "A")
	dangling := f.eg.AddNode(nil)
	if err := f.eg.Link(f.nodes["A"], dangling); err != nil {
		t.Fatal(err)
	}
	diags := reperrors.NewCollector()

	c := Classify(f.mods("A"), f.eg, false, diags)

	if c.Self.Len() != 1 {
		t.Errorf("self = %v, want only A", ids(c.Self))
	}
	if diags.Count(reperrors.MissingOwnershipLink) != 1 {
		t.Errorf("warnings = %+v, want one MISSING_OWNERSHIP_LINK", diags.Warnings())
	}
}
