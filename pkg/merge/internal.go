package merge

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/library"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Pend creates one node per library with its effective version and artifact
// path, and resolves declared dependency names to IDs. Names that match no
// library are dropped with a debug log.
func Pend(libs []library.Library, tc library.Toolchain, logger *log.Logger) ([]resolved.Pending, error) {
	if logger == nil {
		logger = log.Default()
	}

	byName := make(map[string]resolved.ID)
	ids := make([]resolved.ID, len(libs))
	for i, lib := range libs {
		id, err := resolved.NewID(library.Names(lib)...)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "library %q", lib.Name())
		}
		ids[i] = id
		for _, n := range id.Names() {
			byName[n] = id
		}
	}

	pending := make([]resolved.Pending, len(libs))
	for i, lib := range libs {
		d := resolved.NewDependency(ids[i], tc.EffectiveVersion(lib.ArtifactPath()))
		d.AddArtifactPath(lib.ArtifactPath())

		var dependsOn []resolved.ID
		for _, name := range lib.Dependencies() {
			id, ok := byName[name]
			if !ok {
				logger.Debug("unresolved dependency name", "library", lib.Name(), "dependency", name)
				continue
			}
			dependsOn = append(dependsOn, id)
		}
		pending[i] = resolved.Pending{Dependency: d, DependsOn: dependsOn}
	}
	return pending, nil
}

// StampReverseEdges builds the internal graph from pending nodes. Every node
// is recorded on each of its dependencies as a dependee requesting exactly
// its own effective version.
func StampReverseEdges(pending []resolved.Pending) *resolved.Graph {
	g := resolved.NewGraph()
	for _, p := range pending {
		g.Put(p.Dependency)
	}
	for _, p := range pending {
		for _, id := range p.DependsOn {
			if dep, ok := g.Get(id); ok {
				dep.SetRequestedVersion(p.Dependency.ID, p.Dependency.SelectedVersion)
			}
		}
	}
	return g
}

// BuildInternal runs Pend and StampReverseEdges.
func BuildInternal(libs []library.Library, tc library.Toolchain, logger *log.Logger) (*resolved.Graph, error) {
	pending, err := Pend(libs, tc, logger)
	if err != nil {
		return nil, err
	}
	return StampReverseEdges(pending), nil
}
