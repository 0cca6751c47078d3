package merge

import "github.com/matzehuels/depmerge/pkg/resolved"

// BundleIndex maps an artifact path to the external bundle node owning it.
type BundleIndex map[string]*resolved.Dependency

// IndexBundles indexes every artifact path of every external node with more
// than one artifact. When two bundles claim the same path the first wins.
func IndexBundles(external *resolved.Graph) BundleIndex {
	idx := make(BundleIndex)
	for _, d := range external.Dependencies() {
		if !d.IsBundle() {
			continue
		}
		for _, p := range d.ArtifactPaths() {
			if _, ok := idx[p]; !ok {
				idx[p] = d
			}
		}
	}
	return idx
}

// Lookup returns the bundle owning the node's artifact, if the node has
// exactly one artifact and a bundle claims it.
func (b BundleIndex) Lookup(d *resolved.Dependency) (*resolved.Dependency, bool) {
	paths := d.ArtifactPaths()
	if len(paths) != 1 {
		return nil, false
	}
	bundle, ok := b[paths[0]]
	return bundle, ok
}
