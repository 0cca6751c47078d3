package resolved

import (
	"slices"
	"testing"
)

func TestDependencyRequests(t *testing.T) {
	d := NewDependency(MustID("foo"), "2.0")
	a, b := MustID("a"), MustID("b")

	d.SetRequestedVersion(b, "1.0")
	d.SetRequestedVersion(a, "2.0")
	d.SetRequestedVersion(b, "1.5")

	if got := d.Dependees(); !slices.Equal(got, []ID{b, a}) {
		t.Errorf("Dependees() = %v, want insertion order [b a]", got)
	}
	if v, _ := d.RequestedVersion(b); v != "1.5" {
		t.Errorf("RequestedVersion(b) = %q, want 1.5", v)
	}

	if d.AddRequestedVersion(a, "9.9") {
		t.Error("AddRequestedVersion should not overwrite an existing entry")
	}
	if !d.AddRequestedVersion(Root, "2.0") {
		t.Error("AddRequestedVersion should insert a missing entry")
	}
	if !d.IsRequestedByRoot() {
		t.Error("IsRequestedByRoot() = false after root request")
	}
	if d.DependeeCount() != 3 {
		t.Errorf("DependeeCount() = %d, want 3", d.DependeeCount())
	}
}

func TestDependencyArtifacts(t *testing.T) {
	d := NewDependency(MustID("foo"), "")
	d.AddArtifactPath("/lib/a.klib")
	d.AddArtifactPath("/lib/a.klib")

	if d.IsBundle() {
		t.Error("single artifact should not be a bundle")
	}

	d.AddArtifactPath("/lib/b.klib")
	if !d.IsBundle() {
		t.Error("two artifacts should be a bundle")
	}
	if got := d.ArtifactPaths(); !slices.Equal(got, []string{"/lib/a.klib", "/lib/b.klib"}) {
		t.Errorf("ArtifactPaths() = %v", got)
	}
}

func TestDependencyEqual(t *testing.T) {
	build := func(order []string) *Dependency {
		d := NewDependency(MustID("foo"), "1.0")
		for _, n := range order {
			d.SetRequestedVersion(MustID(n), "1.0")
			d.AddArtifactPath("/lib/" + n)
		}
		return d
	}

	a := build([]string{"x", "y"})
	b := build([]string{"y", "x"})
	if !a.Equal(b) {
		t.Error("order should not affect equality")
	}

	c := b.Clone()
	c.SetRequestedVersion(MustID("x"), "2.0")
	if a.Equal(c) {
		t.Error("different request versions should not be equal")
	}
	if v, _ := b.RequestedVersion(MustID("x")); v != "1.0" {
		t.Error("Clone should not share request storage")
	}
}

func TestDependencyValidate(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		requests map[string]string
		wantErr  bool
	}{
		{"no requests", "1.0", nil, false},
		{"unknown selected", "", map[string]string{"a": "1.0"}, false},
		{"matching request", "1.0", map[string]string{"a": "0.9", "b": "1.0"}, false},
		{"no matching request", "1.1", map[string]string{"a": "1.0"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDependency(MustID("foo"), tt.selected)
			for by, v := range tt.requests {
				d.SetRequestedVersion(MustID(by), v)
			}
			if err := d.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGraph(t *testing.T) {
	foo := NewDependency(MustID("foo"), "1.0")
	foo.SetRequestedVersion(Root, "1.0")
	bar := NewDependency(MustID("bar"), "2.0")
	bar.SetRequestedVersion(foo.ID, "1.0")

	g := GraphOf(foo, bar)
	if g.Len() != 2 || g.EdgeCount() != 2 {
		t.Errorf("Len() = %d, EdgeCount() = %d, want 2, 2", g.Len(), g.EdgeCount())
	}
	if got := g.IDs(); !slices.Equal(got, []ID{foo.ID, bar.ID}) {
		t.Errorf("IDs() = %v, want insertion order", got)
	}

	replacement := NewDependency(MustID("foo"), "1.1")
	g.Put(replacement)
	if got := g.Dependencies()[0]; got != replacement {
		t.Error("Put should replace in place")
	}

	errs := g.Finalize()
	if len(errs) != 1 {
		t.Fatalf("Finalize() = %v, want 1 violation (bar)", errs)
	}

	clone := g.Clone()
	if !clone.Equal(g) {
		t.Error("Clone should be equal")
	}
	d, _ := clone.Get(bar.ID)
	d.SelectedVersion = "1.0"
	if clone.Equal(g) {
		t.Error("Clone should be independent of the original")
	}
	if !g.Has(bar.ID) || g.Has(MustID("missing")) {
		t.Error("Has reported wrong membership")
	}
}
