package resolved

import "slices"

// Graph is an insertion-ordered set of dependencies keyed by ID.
//
// Graph owns its nodes: passes mutate them in place through Get. The zero
// value is not usable; call NewGraph. Graph is not safe for concurrent use.
type Graph struct {
	order []ID
	nodes map[ID]*Dependency
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[ID]*Dependency)}
}

// GraphOf builds a graph from deps. Later duplicates replace earlier ones.
func GraphOf(deps ...*Dependency) *Graph {
	g := NewGraph()
	for _, d := range deps {
		g.Put(d)
	}
	return g
}

// Put inserts d, replacing any node with the same ID in place.
func (g *Graph) Put(d *Dependency) {
	if _, ok := g.nodes[d.ID]; !ok {
		g.order = append(g.order, d.ID)
	}
	g.nodes[d.ID] = d
}

// Get returns the node for id.
func (g *Graph) Get(id ID) (*Dependency, bool) {
	d, ok := g.nodes[id]
	return d, ok
}

// Has reports whether id is a node of g.
func (g *Graph) Has(id ID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// IDs returns node IDs in insertion order.
func (g *Graph) IDs() []ID { return slices.Clone(g.order) }

// Dependencies returns the nodes in insertion order.
func (g *Graph) Dependencies() []*Dependency {
	out := make([]*Dependency, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// EdgeCount returns the total number of dependee requests.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, d := range g.nodes {
		n += d.DependeeCount()
	}
	return n
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for _, d := range g.Dependencies() {
		c.Put(d.Clone())
	}
	return c
}

// Equal reports whether both graphs hold semantically equal nodes.
// Node order is ignored.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for id, d := range g.nodes {
		o, ok := other.nodes[id]
		if !ok || !d.Equal(o) {
			return false
		}
	}
	return true
}

// Finalize checks the selected-version invariant on every node and returns
// one error per violating node, in node order.
func (g *Graph) Finalize() []error {
	var errs []error
	for _, d := range g.Dependencies() {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
