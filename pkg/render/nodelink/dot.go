package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depmerge/pkg/render"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// rootNode is the DOT identifier of the root module.
const rootNode = "root"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the selected version and artifact paths to node labels.
	Detailed bool
	// HideRoot omits the root module and the edges leaving it.
	HideRoot bool
}

// ToDOT converts a merged graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(g *resolved.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=16];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if !opts.HideRoot {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, fillcolor=lightblue];\n", rootNode, rootNode)
	}
	for _, d := range g.Dependencies() {
		attrs := fmtAttrs(d, fmtLabel(d, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", d.ID.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, d := range g.Dependencies() {
		for dependee, v := range d.Requests() {
			from := dependee.String()
			if dependee.IsRoot() {
				if opts.HideRoot {
					continue
				}
				from = rootNode
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", from, d.ID.String(), strings.Join(edgeAttrs(d, v), ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(d *resolved.Dependency, detailed bool) string {
	if !detailed {
		return d.ID.String()
	}
	version := d.SelectedVersion
	if version == "" {
		version = "?"
	}
	parts := []string{d.ID.String(), "version: " + version}
	parts = append(parts, d.ArtifactPaths()...)
	return strings.Join(parts, "\n")
}

func fmtAttrs(d *resolved.Dependency, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if d.IsBundle() {
		attrs = append(attrs, "peripheries=2")
	}
	if d.SelectedVersion == "" {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

func edgeAttrs(d *resolved.Dependency, requested string) []string {
	var attrs []string
	if requested != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", requested))
	}
	if requested != "" && d.SelectedVersion != "" && requested != d.SelectedVersion {
		attrs = append(attrs, "color=red", "fontcolor=red")
	}
	if len(attrs) == 0 {
		attrs = append(attrs, "style=solid")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// matching width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
