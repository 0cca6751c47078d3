package merge

import (
	"github.com/matzehuels/depmerge/pkg/observability"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Stats summarizes how internal nodes were folded into the result.
type Stats = observability.MergeStats

// Merge folds the internal graph into a copy of the external graph.
// Neither input is modified. Internal nodes are handled in order:
//
//   - a node whose ID is already external gains the dependee entries it is
//     missing; an empty requested version becomes the external selected
//     version
//   - a node whose sole artifact belongs to an external bundle is inserted
//     under its own ID with the bundle's selected version, which also fills
//     its empty requested versions
//   - any other node is inserted as is, and marked as requested by Root at
//     its selected version when it has no dependees
func Merge(external, internal *resolved.Graph, bundles BundleIndex) (*resolved.Graph, Stats) {
	out := external.Clone()
	stats := Stats{External: external.Len(), Internal: internal.Len()}

	for _, node := range internal.Dependencies() {
		if ext, ok := out.Get(node.ID); ok {
			for dependee, v := range node.Requests() {
				if v == "" {
					v = ext.SelectedVersion
				}
				ext.AddRequestedVersion(dependee, v)
			}
			stats.Unioned++
			continue
		}

		if bundle, ok := bundles.Lookup(node); ok {
			split := node.Clone()
			split.SelectedVersion = bundle.SelectedVersion
			for dependee, v := range node.Requests() {
				if v == "" {
					split.SetRequestedVersion(dependee, bundle.SelectedVersion)
				}
			}
			out.Put(split)
			stats.Split++
			continue
		}

		added := node.Clone()
		if added.DependeeCount() == 0 {
			added.SetRequestedVersion(resolved.Root, added.SelectedVersion)
			stats.RootInferred++
		}
		out.Put(added)
		stats.Added++
	}

	return out, stats
}
