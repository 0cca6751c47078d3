package resolved

import (
	"iter"
	"maps"
	"slices"

	"github.com/matzehuels/depmerge/pkg/errors"
)

// Dependency is one node of a resolved graph.
//
// SelectedVersion may be empty while the graph is being built and is
// back-filled by later passes. Requested versions are keyed by dependee and
// keep their insertion order, which Encode uses for token order.
type Dependency struct {
	ID              ID     // Node identity
	SelectedVersion string // Version chosen by the build, "" if unknown

	dependees []ID
	requested map[ID]string
	artifacts []string
}

// NewDependency creates a node with no dependees and no artifacts.
func NewDependency(id ID, selectedVersion string) *Dependency {
	return &Dependency{
		ID:              id,
		SelectedVersion: selectedVersion,
		requested:       make(map[ID]string),
	}
}

// RequestedVersion returns the version dependee asked for.
func (d *Dependency) RequestedVersion(dependee ID) (string, bool) {
	v, ok := d.requested[dependee]
	return v, ok
}

// SetRequestedVersion records that dependee requests version v, overwriting
// any previous request from the same dependee.
func (d *Dependency) SetRequestedVersion(dependee ID, v string) {
	if _, ok := d.requested[dependee]; !ok {
		d.dependees = append(d.dependees, dependee)
	}
	d.requested[dependee] = v
}

// AddRequestedVersion records the request only if dependee has none yet.
// It reports whether the entry was inserted.
func (d *Dependency) AddRequestedVersion(dependee ID, v string) bool {
	if _, ok := d.requested[dependee]; ok {
		return false
	}
	d.SetRequestedVersion(dependee, v)
	return true
}

// Dependees returns the dependee IDs in insertion order.
func (d *Dependency) Dependees() []ID { return slices.Clone(d.dependees) }

// DependeeCount returns the number of dependees.
func (d *Dependency) DependeeCount() int { return len(d.dependees) }

// Requests iterates dependee/version pairs in insertion order.
func (d *Dependency) Requests() iter.Seq2[ID, string] {
	return func(yield func(ID, string) bool) {
		for _, id := range d.dependees {
			if !yield(id, d.requested[id]) {
				return
			}
		}
	}
}

// RequestedVersions returns a copy of the dependee to version map.
func (d *Dependency) RequestedVersions() map[ID]string { return maps.Clone(d.requested) }

// IsRequestedByRoot reports whether the top-level module requests this node.
func (d *Dependency) IsRequestedByRoot() bool {
	_, ok := d.requested[Root]
	return ok
}

// AddArtifactPath adds path to the artifact set. Duplicates are ignored.
func (d *Dependency) AddArtifactPath(path string) {
	if !slices.Contains(d.artifacts, path) {
		d.artifacts = append(d.artifacts, path)
	}
}

// ArtifactPaths returns the artifact paths in insertion order.
func (d *Dependency) ArtifactPaths() []string { return slices.Clone(d.artifacts) }

// IsBundle reports whether the node maps to more than one physical artifact.
// Bundles are split into per-artifact nodes during a merge.
func (d *Dependency) IsBundle() bool { return len(d.artifacts) > 1 }

// Clone returns a deep copy of d.
func (d *Dependency) Clone() *Dependency {
	return &Dependency{
		ID:              d.ID,
		SelectedVersion: d.SelectedVersion,
		dependees:       slices.Clone(d.dependees),
		requested:       maps.Clone(d.requested),
		artifacts:       slices.Clone(d.artifacts),
	}
}

// Equal reports semantic equality: same ID, selected version, requests and
// artifact set. Dependee and artifact order are ignored.
func (d *Dependency) Equal(other *Dependency) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.ID != other.ID || d.SelectedVersion != other.SelectedVersion {
		return false
	}
	if !maps.Equal(d.requested, other.requested) {
		return false
	}
	if len(d.artifacts) != len(other.artifacts) {
		return false
	}
	for _, p := range d.artifacts {
		if !slices.Contains(other.artifacts, p) {
			return false
		}
	}
	return true
}

// Validate checks that the selected version is one of the requested versions.
// Nodes without any request, and nodes with an unknown selected version, pass.
func (d *Dependency) Validate() error {
	if len(d.requested) == 0 || d.SelectedVersion == "" {
		return nil
	}
	for _, v := range d.requested {
		if v == d.SelectedVersion {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidInput,
		"%s: selected version %q matches no requested version", d.ID, d.SelectedVersion)
}

// Pending pairs a node with the IDs it depends on before reverse edges have
// been stamped onto those dependencies.
type Pending struct {
	Dependency *Dependency
	DependsOn  []ID
}
