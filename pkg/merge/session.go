package merge

import (
	"context"
	"sync"

	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Session computes the merged graph for one input on first access and
// returns the same result afterwards. It is safe for concurrent use; the
// context of the first call is the one the merge runs with.
type Session struct {
	engine *Engine
	input  Input

	once  sync.Once
	graph *resolved.Graph
	stats Stats
	err   error
}

// NewSession creates a session for in. A nil engine uses NewEngine(nil).
func NewSession(engine *Engine, in Input) *Session {
	if engine == nil {
		engine = NewEngine(nil)
	}
	return &Session{engine: engine, input: in}
}

// Graph returns the merged graph, running the merge on first call.
// Callers must not modify the returned graph.
func (s *Session) Graph(ctx context.Context) (*resolved.Graph, error) {
	s.once.Do(func() {
		s.graph, s.stats, s.err = s.engine.Run(ctx, s.input)
	})
	return s.graph, s.err
}

// Stats returns the merge statistics, running the merge if needed.
func (s *Session) Stats(ctx context.Context) (Stats, error) {
	_, err := s.Graph(ctx)
	return s.stats, err
}
