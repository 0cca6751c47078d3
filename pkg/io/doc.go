// Package io provides JSON import and export for merged dependency graphs.
//
// # Overview
//
// The line-oriented text format in package resolved is what the build
// consumes. This package offers the same graph as JSON for external tools:
// dashboards, diffing scripts, and the HTTP API.
//
// # JSON Format
//
//	{
//	  "nodes": [
//	    {
//	      "id": "foo,foo-interop",
//	      "aliases": ["foo", "foo-interop"],
//	      "version": "2.0",
//	      "requested": [{"by": "/", "version": "2.0"}],
//	      "artifacts": ["/lib/foo.klib"]
//	    }
//	  ]
//	}
//
// Node fields:
//   - id: canonical comma-joined alias names (required)
//   - aliases: the same names as a list; informational, ignored on import
//   - version: selected version, omitted when unknown
//   - requested: dependee requests in insertion order; "/" is the root module
//   - artifacts: absolute artifact paths
//
// # Import
//
// [ReadJSON] and [ImportJSON] rebuild a [resolved.Graph]. Every "by" entry
// must name the root module or a node of the same document, mirroring the
// dependee index rule of the text format.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write the graph with two-space indentation.
// Export followed by import yields a graph equal to the original.
package io
