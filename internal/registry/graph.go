package registry

import (
	"github.com/leefowlercu/modorder/internal/modmeta"
)

// Edge states that From must load after To.
type Edge struct {
	From string
	To   string
	// Name is the dependency name as declared by From.
	Name string
	// MinVersion is nil when From declared no version constraint.
	MinVersion *modmeta.Version
}

// Graph is an immutable snapshot of mods and their declared dependencies.
type Graph struct {
	nodes []string
	mods  map[string]*modmeta.Mod
	edges map[string][]Edge
}

func newGraph(size int) *Graph {
	return &Graph{
		nodes: make([]string, 0, size),
		mods:  make(map[string]*modmeta.Mod, size),
		edges: make(map[string][]Edge, size),
	}
}

func (g *Graph) addNode(m *modmeta.Mod) {
	g.nodes = append(g.nodes, m.UUID)
	g.mods[m.UUID] = m
}

func (g *Graph) addEdge(e Edge) {
	g.edges[e.From] = append(g.edges[e.From], e)
}

// Nodes returns the node UUIDs in the order they were added.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Node returns the mod stored under uuid.
func (g *Graph) Node(uuid string) (*modmeta.Mod, bool) {
	m, ok := g.mods[uuid]
	return m, ok
}

// Has reports whether uuid is a node of the graph.
func (g *Graph) Has(uuid string) bool {
	_, ok := g.mods[uuid]
	return ok
}

// Edges returns the outgoing dependency edges of uuid in declaration order.
func (g *Graph) Edges(uuid string) []Edge {
	return append([]Edge(nil), g.edges[uuid]...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}
