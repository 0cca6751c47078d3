// Package pipeline runs the merge end to end for the CLI and the HTTP API.
//
// # Architecture
//
// A run has three stages:
//
//  1. Load: read the external manifest and the library descriptors
//  2. Merge: build the merged graph, served from the cache when the inputs
//     hash to a known key
//  3. Render: diagnostics plus one artifact per requested format
//
// By centralizing this, the CLI and the server share caching and defaults.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ManifestPath:  "build/external-deps.txt",
//	    LibrariesPath: "libraries.toml",
//	    Toolchain:     library.Toolchain{Home: "/opt/tc", Version: "2.1.0"},
//	    Formats:       []string{pipeline.FormatText, pipeline.FormatSVG},
//	})
//	text := result.Artifacts[pipeline.FormatText]
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depmerge/pkg/diagnostics"
	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/library"
	"github.com/matzehuels/depmerge/pkg/merge"
	"github.com/matzehuels/depmerge/pkg/render"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = render.FormatDOT
	FormatSVG  = render.FormatSVG
	FormatPDF  = render.FormatPDF
	FormatPNG  = render.FormatPNG
)

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG, FormatPDF, FormatPNG}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %v)", format, ValidFormats)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Inputs given inline (API) take precedence over paths (CLI).
	Manifest      string               `json:"manifest,omitempty"`
	ManifestPath  string               `json:"-"`
	Libraries     []library.Descriptor `json:"libraries,omitempty"`
	LibrariesPath string               `json:"-"`
	Toolchain     library.Toolchain    `json:"toolchain"`

	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Detailed node labels in DOT/SVG output
	Refresh  bool     `json:"refresh,omitempty"`  // Ignore cached results

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks inputs and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Toolchain = o.Toolchain.WithDefaults()
	if o.Toolchain.Home != "" && !filepath.IsAbs(o.Toolchain.Home) {
		return errors.New(errors.ErrCodeInvalidPath, "toolchain home %q must be absolute", o.Toolchain.Home)
	}
	if err := errors.ValidateVersion(o.Toolchain.Version); err != nil {
		return err
	}
	if o.Libraries != nil {
		if err := library.Validate(o.Libraries); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the merged dependency graph.
	Graph *resolved.Graph

	// Text is Graph in the line-oriented text format.
	Text []byte

	// Report holds version diagnostics for Graph.
	Report diagnostics.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the merge was served from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Merge      merge.Stats // Zero on cache hits
	NodeCount  int
	EdgeCount  int
	MergeTime  time.Duration
	RenderTime time.Duration
}

// MalformedLine is one rejected line of a manifest.
type MalformedLine struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

func (m MalformedLine) String() string {
	return fmt.Sprintf("line %d: %q", m.Line, m.Text)
}
