package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depmerge/pkg/cache"
	"github.com/matzehuels/depmerge/pkg/diagnostics"
	depio "github.com/matzehuels/depmerge/pkg/io"
	"github.com/matzehuels/depmerge/pkg/library"
	"github.com/matzehuels/depmerge/pkg/merge"
	"github.com/matzehuels/depmerge/pkg/observability"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // Lifetime of cached merges (default: cache.TTLMerge)
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLMerge,
	}
}

// Execute runs the complete load → merge → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	in, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	mergeStart := time.Now()
	g, text, hit, stats, err := r.MergeWithCacheInfo(ctx, in, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	result.Graph = g
	result.Text = text
	result.CacheHit = hit
	result.Stats.Merge = stats
	result.Stats.MergeTime = time.Since(mergeStart)
	result.Stats.NodeCount = g.Len()
	result.Stats.EdgeCount = g.EdgeCount()

	r.Logger.Info("merged dependency graph",
		"nodes", g.Len(),
		"edges", g.EdgeCount(),
		"cached", hit,
		"duration", result.Stats.MergeTime)

	result.Report = diagnostics.Analyze(g)
	if n := len(result.Report.Violations); n > 0 {
		r.Logger.Warn("selected versions without matching request", "nodes", n)
	}

	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, err := Render(ctx, g, text, format, opts.Detailed)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(renderStart)

	return result, nil
}

// Load resolves the inputs of opts. A missing or unreadable manifest file
// counts as absent; library descriptor errors are returned.
func (r *Runner) Load(opts Options) (merge.Input, error) {
	in := merge.Input{Toolchain: opts.Toolchain}

	if opts.Manifest != "" {
		in.Manifest = []byte(opts.Manifest)
	} else {
		in.Manifest = merge.ReadManifest(opts.ManifestPath, r.Logger)
	}

	descs := opts.Libraries
	if descs == nil && opts.LibrariesPath != "" {
		loaded, err := library.Load(opts.LibrariesPath)
		if err != nil {
			return merge.Input{}, err
		}
		descs = loaded
		r.Logger.Debug("loaded library descriptors", "path", opts.LibrariesPath, "libraries", len(descs))
	}
	in.Libraries = library.Libraries(descs)
	return in, nil
}

// MergeWithCacheInfo merges in, consulting the cache unless refresh is set.
// It returns the graph, its encoded text and whether it came from the cache.
func (r *Runner) MergeWithCacheInfo(ctx context.Context, in merge.Input, refresh bool) (*resolved.Graph, []byte, bool, merge.Stats, error) {
	key := r.Keyer.MergeKey(MergeKeyOpts(in))
	backend := cache.BackendName(r.Cache)
	hooks := observability.Cache()

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if deps, err := resolved.DecodeStrict(data); err == nil {
				hooks.OnCacheHit(ctx, backend)
				return resolved.GraphOf(deps...), data, true, merge.Stats{}, nil
			}
			r.Logger.Debug("discarding undecodable cache entry", "key", key)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "backend", backend, "err", err)
		}
		hooks.OnCacheMiss(ctx, backend)
	}

	g, stats, err := merge.NewEngine(r.Logger).Run(ctx, in)
	if err != nil {
		return nil, nil, false, stats, err
	}

	var buf bytes.Buffer
	if err := resolved.EncodeGraph(&buf, g); err != nil {
		return nil, nil, false, stats, err
	}
	data := buf.Bytes()

	if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
		r.Logger.Warn("cache write failed", "backend", backend, "err", err)
	} else {
		hooks.OnCacheSet(ctx, backend, len(data))
	}
	return g, data, false, stats, nil
}

// InspectResult is the outcome of decoding a manifest on its own.
type InspectResult struct {
	Graph     *resolved.Graph
	Malformed []MalformedLine
	CacheHit  bool
}

// Valid reports whether the manifest decoded without malformed lines.
func (r *InspectResult) Valid() bool { return len(r.Malformed) == 0 }

// Inspect decodes a manifest and collects every malformed line. Valid
// manifests are cached as JSON under the manifest's hash.
func (r *Runner) Inspect(ctx context.Context, data []byte) (*InspectResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := r.Keyer.DecodeKey(data)
	backend := cache.BackendName(r.Cache)
	hooks := observability.Cache()

	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if g, err := depio.Unmarshal(cached); err == nil {
			hooks.OnCacheHit(ctx, backend)
			return &InspectResult{Graph: g, CacheHit: true}, nil
		}
	}
	hooks.OnCacheMiss(ctx, backend)

	res := &InspectResult{}
	g := resolved.DecodeGraph(data, func(n int, line string) {
		res.Malformed = append(res.Malformed, MalformedLine{Line: n, Text: line})
	})
	res.Graph = g
	if !res.Valid() {
		return res, nil
	}

	if encoded, err := depio.Marshal(g); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, r.ttl()); err == nil {
			hooks.OnCacheSet(ctx, backend, len(encoded))
		}
	}
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL == 0 {
		return cache.TTLMerge
	}
	return r.TTL
}

// MergeKeyOpts lists every input of in for cache key derivation.
func MergeKeyOpts(in merge.Input) cache.MergeKeyOpts {
	libs := make([]cache.LibraryKey, len(in.Libraries))
	for i, l := range in.Libraries {
		libs[i] = cache.LibraryKey{
			Names:   library.Names(l),
			Path:    l.ArtifactPath(),
			Depends: l.Dependencies(),
		}
	}
	tc := in.Toolchain.WithDefaults()
	return cache.MergeKeyOpts{
		ManifestHash:     cache.Hash(in.Manifest),
		Libraries:        libs,
		ToolchainHome:    tc.Home,
		ToolchainVersion: tc.Version,
		BundledDir:       tc.BundledDir,
	}
}
