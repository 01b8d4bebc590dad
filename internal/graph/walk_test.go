package graph

import (
	"fmt"
	"testing"
)

func buildChain(t *testing.T, n int) *Graph {
	t.Helper()
	g := NewGraph()
	for i := 0; i < n; i++ {
		if err := g.AddModule(&Module{ID: fmt.Sprint(i)}); err != nil {
			t.Fatalf("AddModule: %v", err)
		}
	}
	for i := 0; i+1 < n; i++ {
		if _, err := g.Connect(fmt.Sprint(i), fmt.Sprint(i+1), false, false); err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}
	return g
}

func TestWalk_VisitsEachModuleOnce(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = g.AddModule(&Module{ID: id})
	}
	// diamond a -> b, a -> c, b -> d, c -> d
	_, _ = g.Connect("a", "b", false, false)
	_, _ = g.Connect("a", "c", false, false)
	_, _ = g.Connect("b", "d", false, false)
	_, _ = g.Connect("c", "d", false, false)

	a, _ := g.Module("a")
	counts := map[string]int{}
	visited := Walk(a, func(m, root *Module) {
		if root != a {
			t.Errorf("root = %v, want %v", root, a)
		}
		counts[m.ID]++
	})

	if visited != 4 {
		t.Errorf("visited = %d, want 4", visited)
	}
	for id, c := range counts {
		if c != 1 {
			t.Errorf("module %s visited %d times, want 1", id, c)
		}
	}
}

func TestWalk_Order(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"r", "x", "x1", "y"} {
		_ = g.AddModule(&Module{ID: id})
	}
	_, _ = g.Connect("r", "x", false, false)
	_, _ = g.Connect("r", "y", false, false)
	_, _ = g.Connect("x", "x1", false, false)

	r, _ := g.Module("r")
	var order []string
	Walk(r, func(m, _ *Module) { order = append(order, m.ID) })

	want := []string{"r", "x", "x1", "y"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestWalk_SkipsWeakInactiveAndUnresolved(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"root", "weak", "inactive", "ok"} {
		_ = g.AddModule(&Module{ID: id})
	}
	_, _ = g.Connect("root", "weak", true, false)
	_, _ = g.Connect("root", "inactive", false, true)
	_, _ = g.Connect("root", "missing", false, false)
	_, _ = g.Connect("root", "ok", false, false)

	root, _ := g.Module("root")
	reached := NewSet[*Module]()
	Walk(root, func(m, _ *Module) { reached.Add(m) })

	if reached.Len() != 2 {
		t.Fatalf("reached %d modules, want 2", reached.Len())
	}
	ok, _ := g.Module("ok")
	if !reached.Has(ok) {
		t.Error("expected ok to be reachable")
	}
	weak, _ := g.Module("weak")
	if reached.Has(weak) {
		t.Error("weak edge must not be followed")
	}
}

func TestWalk_TerminatesOnCycles(t *testing.T) {
	g := buildChain(t, 3)
	_, _ = g.Connect("2", "0", false, false)

	root, _ := g.Module("0")
	if n := Walk(root, nil); n != 3 {
		t.Errorf("visited = %d, want 3", n)
	}
}

func TestWalk_DeepChain(t *testing.T) {
	const depth = 200000
	g := buildChain(t, depth)
	root, _ := g.Module("0")
	if n := Walk(root, nil); n != depth {
		t.Errorf("visited = %d, want %d", n, depth)
	}
}

func TestWalk_IdempotentOwnership(t *testing.T) {
	g := buildChain(t, 5)
	root, _ := g.Module("0")
	owners := map[*Module]*Set[*Module]{}
	annotate := func(m, r *Module) {
		if owners[m] == nil {
			owners[m] = NewSet[*Module]()
		}
		owners[m].Add(r)
	}

	Walk(root, annotate)
	Walk(root, annotate)

	for m, s := range owners {
		if s.Len() != 1 {
			t.Errorf("%v has %d owners, want 1", m, s.Len())
		}
	}
}

func TestWalk_NilRoot(t *testing.T) {
	if n := Walk(nil, nil); n != 0 {
		t.Errorf("visited = %d, want 0", n)
	}
}
