// Package nodelink renders merged dependency graphs as node-link diagrams.
//
// # Overview
//
// Every node becomes a box labelled with its ID. An arrow runs from each
// dependee to the dependency it requests, labelled with the requested
// version. Requests that the selected version does not honor are drawn in
// red. The root module appears as a separate node named "root".
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include the selected version and artifact paths
//   - HideRoot: omit the root node and its edges
//
// Bundles are drawn with a double border, nodes with an unknown selected
// version are filled grey.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
