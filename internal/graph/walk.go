package graph

// VisitFunc is called once for every module reached by a walk, together with
// the root the walk started from.
type VisitFunc func(visited, root *Module)

// Walk performs a depth-first traversal from root over traversable edges and
// calls onVisit the first time each module is reached, before its
// dependencies. The visited set is local to the call, so walking the same root
// twice visits everything twice; ownership sets absorb the repetition.
//
// The traversal uses an explicit stack so that long dependency chains cannot
// exhaust the goroutine stack. Children are pushed in reverse so the visiting
// order matches the recursive formulation.
func Walk(root *Module, onVisit VisitFunc) int {
	if root == nil {
		return 0
	}
	visited := make(map[*Module]struct{})
	stack := []*Module{root}
	count := 0

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		count++
		if onVisit != nil {
			onVisit(current, root)
		}

		for i := len(current.Connections) - 1; i >= 0; i-- {
			conn := current.Connections[i]
			if !conn.Traversable() {
				continue
			}
			if _, seen := visited[conn.Module]; !seen {
				stack = append(stack, conn.Module)
			}
		}
	}
	return count
}
