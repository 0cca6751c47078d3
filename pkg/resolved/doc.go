// Package resolved models a resolved dependency graph and its text encoding.
//
// # Overview
//
// A resolved graph maps each dependency [ID] to a [Dependency] carrying the
// version the build selected, the versions each dependee asked for, and the
// artifact paths the logical dependency maps to. The special [Root] ID stands
// for the module that consumes the graph; it never appears as a node.
//
// # Identity
//
// An [ID] is a non-empty set of alias names. A library bundled together with
// its interop companions is one logical node known under several names:
//
//	id, _ := resolved.NewID("org.example:foo", "foo-cinterop-bar")
//	id.String() // "foo-cinterop-bar,org.example:foo"
//
// The rendering sorts and deduplicates names, so two IDs are equal exactly
// when their alias sets are equal. IDs are comparable and can be used as map
// keys directly.
//
// # Building a graph
//
// Dependencies are built in passes: create the nodes first, then stamp
// dependee edges and back-fill versions through [Graph.Get]. [Graph.Finalize]
// checks the selected-version invariant once all passes are done.
//
// # Text format
//
// [Encode] writes one header line per node followed by tab-indented artifact
// paths. Nodes are numbered from 1 in iteration order; 0 is reserved for Root:
//
//	1 foo[2.0] #0[2.0]
//		/lib/foo.klib
//	2 bar[1.1] #1[1.0]
//		/lib/bar.klib
//
// [Decode] reverses the encoding. A single malformed line voids the whole
// decode: the malformed-line callback fires and the result is empty, so a
// corrupt manifest is never half trusted. [DecodeStrict] returns the first
// problem as an error instead.
package resolved
