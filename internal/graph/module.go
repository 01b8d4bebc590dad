// Package graph models the build's module graph as seen by the size report:
// modules, their dependency connections, the entry nodes that structure
// entries into a DAG, and the traversal used to compute ownership.
package graph

import "fmt"

// Module is one unit of source code in the build graph.
type Module struct {
	// ID is the identifier assigned by the build; bundles refer to modules by it.
	ID string
	// Resource is the originating file path, used for rule matching.
	Resource string
	// Identifier is the human readable name shown in reports.
	Identifier string
	// Size is the byte size computed by the build.
	Size int64
	// Connections are the outgoing dependency edges.
	Connections []*Connection
}

// ReadableIdentifier returns the identifier shown in reports, falling back to
// the resource path and finally to the id.
func (m *Module) ReadableIdentifier() string {
	switch {
	case m.Identifier != "":
		return m.Identifier
	case m.Resource != "":
		return m.Resource
	default:
		return m.ID
	}
}

func (m *Module) String() string {
	return fmt.Sprintf("module(%s %s)", m.ID, m.ReadableIdentifier())
}

// Connection is a directed dependency edge.
type Connection struct {
	// Dependency is the request that produced the edge. Empty means unresolved.
	Dependency string
	// Module is the resolved target, nil when the build could not resolve it.
	Module *Module
	// Weak edges never pull their target into a bundle.
	Weak bool
	// Inactive edges were explicitly deactivated by the build.
	Inactive bool
}

// Traversable reports whether the walker follows this edge.
func (c *Connection) Traversable() bool {
	return c != nil && c.Dependency != "" && c.Module != nil && !c.Weak && !c.Inactive
}

// Graph holds every module of one build snapshot.
type Graph struct {
	modules []*Module
	byID    map[string]*Module
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{byID: make(map[string]*Module)}
}

// AddModule registers m. A module with an id already present is rejected.
func (g *Graph) AddModule(m *Module) error {
	if m == nil {
		return fmt.Errorf("nil module")
	}
	if _, exists := g.byID[m.ID]; exists {
		return fmt.Errorf("duplicate module id %q", m.ID)
	}
	g.byID[m.ID] = m
	g.modules = append(g.modules, m)
	return nil
}

// Connect adds an edge from one module to another by id. The target may be
// unknown, in which case the connection stays unresolved.
func (g *Graph) Connect(fromID, toID string, weak, inactive bool) (*Connection, error) {
	from, ok := g.byID[fromID]
	if !ok {
		return nil, fmt.Errorf("unknown module id %q", fromID)
	}
	conn := &Connection{
		Dependency: toID,
		Module:     g.byID[toID],
		Weak:       weak,
		Inactive:   inactive,
	}
	from.Connections = append(from.Connections, conn)
	return conn, nil
}

// Module returns the module with the given build id.
func (g *Graph) Module(id string) (*Module, bool) {
	m, ok := g.byID[id]
	return m, ok
}

// Modules returns all modules in registration order.
func (g *Graph) Modules() []*Module {
	return g.modules
}

// Len returns the number of modules.
func (g *Graph) Len() int {
	return len(g.modules)
}
