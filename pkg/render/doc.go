// Package render turns merged dependency graphs into pictures.
//
// The [nodelink] subpackage produces Graphviz DOT and SVG. The [ToPDF] and
// [ToPNG] functions convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/depmerge/pkg/render/nodelink
package render
