package diagnostics

import (
	"testing"

	"github.com/matzehuels/depmerge/pkg/resolved"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		requested, selected string
		wantKind            Kind
		wantEqual           bool
	}{
		{"1.0.0", "1.2.0", KindUpgraded, false},
		{"2.0", "1.9.9", KindDowngraded, false},
		{"1.0", "1.0.0", "", true},
		{"v1.4.0", "1.4.0", "", true},
		{"1.0-SNAPSHOT", "1.0", KindUpgraded, false},
		{"latest", "1.0", KindIncomparable, false},
		{"1.0", "nightly", KindIncomparable, false},
	}
	for _, tt := range tests {
		kind, equal := Classify(tt.requested, tt.selected)
		if kind != tt.wantKind || equal != tt.wantEqual {
			t.Errorf("Classify(%q, %q) = %q, %v; want %q, %v",
				tt.requested, tt.selected, kind, equal, tt.wantKind, tt.wantEqual)
		}
	}
}

func TestAnalyze(t *testing.T) {
	app := resolved.MustID("app")
	tool := resolved.MustID("tool")

	foo := resolved.NewDependency(resolved.MustID("foo"), "1.2.0")
	foo.SetRequestedVersion(resolved.Root, "1.2.0")
	foo.SetRequestedVersion(app, "1.0.0")
	foo.SetRequestedVersion(tool, "2.0.0")
	foo.AddArtifactPath("/l/foo")

	bar := resolved.NewDependency(resolved.MustID("bar"), "")
	bar.SetRequestedVersion(resolved.Root, "")

	bundle := resolved.NewDependency(resolved.MustID("bundle"), "3.0")
	bundle.SetRequestedVersion(resolved.Root, "2.0")
	bundle.AddArtifactPath("/l/a")
	bundle.AddArtifactPath("/l/b")

	r := Analyze(resolved.GraphOf(foo, bar, bundle))

	if len(r.Conflicts) != 3 {
		t.Fatalf("len(Conflicts) = %d, want 3: %v", len(r.Conflicts), r.Conflicts)
	}
	if got := r.Count(KindUpgraded); got != 2 {
		t.Errorf("upgraded = %d, want 2", got)
	}
	if got := r.Count(KindDowngraded); got != 1 {
		t.Errorf("downgraded = %d, want 1", got)
	}
	if c := r.Conflicts[0]; c.Dependee != app || c.Requested != "1.0.0" {
		t.Errorf("first conflict = %v, want app requesting 1.0.0", c)
	}
	if len(r.Unknown) != 1 || r.Unknown[0] != bar.ID {
		t.Errorf("Unknown = %v, want [bar]", r.Unknown)
	}
	if len(r.Bundles) != 1 || r.Bundles[0] != bundle.ID {
		t.Errorf("Bundles = %v, want [bundle]", r.Bundles)
	}
	if len(r.Violations) != 1 {
		t.Errorf("Violations = %v, want one for bundle", r.Violations)
	}
	if r.Clean() {
		t.Error("Clean() = true, want false")
	}
}

func TestAnalyzeClean(t *testing.T) {
	d := resolved.NewDependency(resolved.MustID("foo"), "2.0")
	d.SetRequestedVersion(resolved.Root, "2.0")
	d.SetRequestedVersion(resolved.MustID("bar"), "")

	if r := Analyze(resolved.GraphOf(d)); !r.Clean() {
		t.Errorf("Analyze() = %+v, want clean report", r)
	}
}

func TestCycles(t *testing.T) {
	a := resolved.NewDependency(resolved.MustID("a"), "1")
	a.SetRequestedVersion(resolved.Root, "1")
	a.SetRequestedVersion(resolved.MustID("c"), "1")
	b := resolved.NewDependency(resolved.MustID("b"), "1")
	b.SetRequestedVersion(a.ID, "1")
	c := resolved.NewDependency(resolved.MustID("c"), "1")
	c.SetRequestedVersion(b.ID, "1")
	d := resolved.NewDependency(resolved.MustID("d"), "1")
	d.SetRequestedVersion(resolved.MustID("outside"), "1")

	g := resolved.GraphOf(a, b, c, d)
	got := Cycles(g)
	want := []Edge{{From: c.ID, To: a.ID}}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("Cycles() = %v, want %v", got, want)
	}

	r := Analyze(g)
	if len(r.Cycles) != 1 || r.Clean() {
		t.Errorf("Analyze() cycles = %v, clean = %v; want one cycle, not clean", r.Cycles, r.Clean())
	}
}

func TestCyclesAcyclic(t *testing.T) {
	a := resolved.NewDependency(resolved.MustID("a"), "1")
	a.SetRequestedVersion(resolved.Root, "1")
	b := resolved.NewDependency(resolved.MustID("b"), "1")
	b.SetRequestedVersion(a.ID, "1")
	b.SetRequestedVersion(resolved.Root, "1")

	if got := Cycles(resolved.GraphOf(a, b)); len(got) != 0 {
		t.Errorf("Cycles() = %v, want none", got)
	}
}
