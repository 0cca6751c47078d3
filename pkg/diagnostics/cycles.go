package diagnostics

import "github.com/matzehuels/depmerge/pkg/resolved"

// Edge is a dependee → dependency edge.
type Edge struct {
	From resolved.ID `json:"from"`
	To   resolved.ID `json:"to"`
}

// Cycles returns the back edges found by a depth-first walk from the nodes
// requested by Root, then from every node not yet visited. Removing the
// returned edges leaves g acyclic. Dependees that are not nodes of g are
// ignored.
func Cycles(g *resolved.Graph) []Edge {
	const (
		white = iota
		gray
		black
	)

	children := make(map[resolved.ID][]resolved.ID)
	for _, d := range g.Dependencies() {
		for dependee := range d.Requests() {
			if g.Has(dependee) {
				children[dependee] = append(children[dependee], d.ID)
			}
		}
	}

	color := make(map[resolved.ID]int)
	var back []Edge

	var dfs func(id resolved.ID)
	dfs = func(id resolved.ID) {
		color[id] = gray
		for _, child := range children[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back = append(back, Edge{From: id, To: child})
			}
		}
		color[id] = black
	}

	for _, d := range g.Dependencies() {
		if d.IsRequestedByRoot() && color[d.ID] == white {
			dfs(d.ID)
		}
	}
	for _, d := range g.Dependencies() {
		if color[d.ID] == white {
			dfs(d.ID)
		}
	}
	return back
}
