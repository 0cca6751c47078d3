// Package diagnostics reports version conflicts in a merged dependency graph.
//
// A conflict is any dependee whose requested version differs from the
// version the build selected. Versions are compared as semantic versions
// where possible:
//
//   - [KindUpgraded]: the selected version is newer than requested
//   - [KindDowngraded]: the selected version is older than requested
//   - [KindIncomparable]: either version is not a semantic version
//
// Besides conflicts the report lists nodes with an unknown selected version,
// bundles, nodes whose selected version matches none of their requests, and
// the edges closing dependency cycles.
package diagnostics

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Kind classifies a conflict.
type Kind string

const (
	KindUpgraded     Kind = "upgraded"
	KindDowngraded   Kind = "downgraded"
	KindIncomparable Kind = "incomparable"
)

// Conflict is one dependee request that the selected version does not honor
// exactly.
type Conflict struct {
	Dependency resolved.ID `json:"dependency"`
	Dependee   resolved.ID `json:"dependee"`
	Requested  string      `json:"requested"`
	Selected   string      `json:"selected"`
	Kind       Kind        `json:"kind"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: %s requested %s, selected %s (%s)", c.Dependency, c.Dependee, c.Requested, c.Selected, c.Kind)
}

// Report is the result of Analyze.
type Report struct {
	Conflicts  []Conflict    `json:"conflicts,omitempty"`
	Unknown    []resolved.ID `json:"unknown,omitempty"`
	Bundles    []resolved.ID `json:"bundles,omitempty"`
	Violations []string      `json:"violations,omitempty"`
	Cycles     []Edge        `json:"cycles,omitempty"`
}

// Clean reports whether the graph has no conflicts, violations or cycles.
func (r Report) Clean() bool {
	return len(r.Conflicts) == 0 && len(r.Violations) == 0 && len(r.Cycles) == 0
}

// Count returns the number of conflicts of kind k.
func (r Report) Count(k Kind) int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// Analyze inspects every node of g in order. Requests with an empty version
// carry no information and are skipped.
func Analyze(g *resolved.Graph) Report {
	var r Report
	for _, d := range g.Dependencies() {
		if d.SelectedVersion == "" {
			r.Unknown = append(r.Unknown, d.ID)
		}
		if d.IsBundle() {
			r.Bundles = append(r.Bundles, d.ID)
		}
		if d.SelectedVersion == "" {
			continue
		}
		for dependee, requested := range d.Requests() {
			if requested == "" || requested == d.SelectedVersion {
				continue
			}
			kind, equal := Classify(requested, d.SelectedVersion)
			if equal {
				continue
			}
			r.Conflicts = append(r.Conflicts, Conflict{
				Dependency: d.ID,
				Dependee:   dependee,
				Requested:  requested,
				Selected:   d.SelectedVersion,
				Kind:       kind,
			})
		}
	}
	for _, err := range g.Finalize() {
		r.Violations = append(r.Violations, err.Error())
	}
	r.Cycles = Cycles(g)
	return r
}

// Classify compares requested against selected. equal is true when both
// parse as the same semantic version, e.g. "1.0" and "1.0.0".
func Classify(requested, selected string) (kind Kind, equal bool) {
	rv, err := semver.NewVersion(requested)
	if err != nil {
		return KindIncomparable, false
	}
	sv, err := semver.NewVersion(selected)
	if err != nil {
		return KindIncomparable, false
	}
	switch sv.Compare(rv) {
	case 1:
		return KindUpgraded, false
	case -1:
		return KindDowngraded, false
	default:
		return "", true
	}
}
