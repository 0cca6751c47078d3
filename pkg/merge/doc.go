// Package merge reconciles two views of a module's dependency graph.
//
// # Overview
//
// The external view comes from the build system as a serialized manifest
// (see [resolved.Decode]). It knows real versions and the dependee hierarchy
// but misses every library the toolchain supplies on its own. The internal
// view is built from the full list of resolved libraries. It is complete but
// version-unaware: each library only knows its own effective version.
//
// # Algorithm
//
// A merge runs in separate, independently testable phases:
//
//  1. [DecodeExternal]: decode the manifest, empty on any malformed line
//  2. [BuildInternal]: create nodes, then [StampReverseEdges] so every
//     dependency records each dependee at that dependee's effective version
//  3. [IndexBundles]: map each artifact path of a multi-artifact external
//     node to that bundle node
//  4. [Merge]: fold internal nodes into the external graph, splitting bundles
//     into per-artifact nodes and marking orphans as requested by the root
//
// [Engine.Run] composes the phases. [Session] memoizes the result so a merge
// runs at most once per session.
//
// [resolved.Decode]: github.com/matzehuels/depmerge/pkg/resolved.Decode
package merge
