// Package pkg provides the core libraries of depmerge.
//
// # Overview
//
// depmerge reconciles two views of a module's external dependencies: the
// manifest written by the build tool that resolved them, and the libraries
// the compiler was actually handed. The result is one graph in a canonical
// text format. The pkg directory is organized as follows:
//
//  1. [resolved] - IDs, dependencies, graphs and the text codec
//  2. [library] - library descriptors and toolchain version inference
//  3. [merge] - the merge steps, the engine and memoizing sessions
//  4. [pipeline] - orchestration (load → merge → render) with caching
//  5. [diagnostics], [io], [render] - reports, JSON and graph rendering
//  6. [cache], [store], [server], [observability] - infrastructure
//
// # Data flow
//
//	external manifest        library descriptors
//	         ↓                        ↓
//	  [merge.DecodeExternal]   [merge.BuildInternal]
//	         ↓                        ↓
//	         └──────→ [merge.Merge] ←─┘
//	                       ↓
//	   text / JSON / DOT / SVG / PDF / PNG, diagnostics
//
// # Quick Start
//
//	in := merge.Input{
//	    Manifest:  manifestBytes,
//	    Libraries: library.Libraries(descs),
//	    Toolchain: library.Toolchain{Home: "/opt/toolchain", Version: "2.1.0"},
//	}
//	g, _, err := merge.NewEngine(nil).Run(ctx, in)
//	if err != nil {
//	    return err
//	}
//	resolved.EncodeGraph(os.Stdout, g)
package pkg
