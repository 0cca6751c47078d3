package merge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depmerge/pkg/library"
	"github.com/matzehuels/depmerge/pkg/observability"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Input holds everything a merge depends on.
type Input struct {
	Manifest  []byte            // External manifest text, nil if absent
	Libraries []library.Library // Every library taking part in compilation
	Toolchain library.Toolchain // Used to infer effective versions
}

// Engine runs merges. The zero value logs to log.Default().
type Engine struct {
	Logger *log.Logger
}

// NewEngine creates an engine. A nil logger falls back to log.Default().
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Logger: logger}
}

func (e *Engine) logger() *log.Logger {
	if e == nil || e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

// Run merges in.Manifest with the graph built from in.Libraries.
// The result depends only on the input.
func (e *Engine) Run(ctx context.Context, in Input) (*resolved.Graph, Stats, error) {
	start := time.Now()
	g, stats, err := e.run(ctx, in)
	observability.Merge().OnMergeComplete(ctx, stats, time.Since(start), err)
	return g, stats, err
}

func (e *Engine) run(ctx context.Context, in Input) (*resolved.Graph, Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}
	logger := e.logger()

	external := DecodeExternal(ctx, in.Manifest, logger)
	internal, err := BuildInternal(in.Libraries, in.Toolchain, logger)
	if err != nil {
		return nil, Stats{}, err
	}
	bundles := IndexBundles(external)

	g, stats := Merge(external, internal, bundles)
	logger.Debug("merged dependency graphs",
		"external", stats.External,
		"internal", stats.Internal,
		"unioned", stats.Unioned,
		"split", stats.Split,
		"added", stats.Added)
	return g, stats, nil
}
