package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/depmerge/pkg/resolved"
)

func testGraph() *resolved.Graph {
	foo := resolved.NewDependency(resolved.MustID("foo"), "2.0")
	foo.SetRequestedVersion(resolved.Root, "2.0")
	foo.SetRequestedVersion(resolved.MustID("bar"), "1.0")
	foo.AddArtifactPath("/lib/foo.klib")

	bar := resolved.NewDependency(resolved.MustID("bar"), "")
	bar.SetRequestedVersion(resolved.Root, "")
	bar.AddArtifactPath("/lib/bar-a.klib")
	bar.AddArtifactPath("/lib/bar-b.klib")

	return resolved.GraphOf(foo, bar)
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})

	for _, want := range []string{
		"digraph G",
		`"root" [label="root"`,
		`"foo" [label="foo"]`,
		`"root" -> "foo" [label="2.0"]`,
		`"bar" -> "foo" [label="1.0", color=red, fontcolor=red]`,
		`"root" -> "bar" [style=solid]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s:\n%s", want, dot)
		}
	}
}

func TestToDOT_NodeStyles(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})
	if !strings.Contains(dot, `"bar" [label="bar", peripheries=2, fillcolor=lightgrey]`) {
		t.Errorf("bundle with unknown version not styled:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testGraph(), Options{Detailed: true})

	if !strings.Contains(dot, `version: 2.0\n/lib/foo.klib`) {
		t.Errorf("ToDOT() detailed output missing version and artifact:\n%s", dot)
	}
	if !strings.Contains(dot, `version: ?`) {
		t.Error("ToDOT() detailed output should mark unknown versions")
	}
}

func TestToDOT_HideRoot(t *testing.T) {
	dot := ToDOT(testGraph(), Options{HideRoot: true})

	if strings.Contains(dot, `"root"`) {
		t.Errorf("ToDOT() with HideRoot still mentions root:\n%s", dot)
	}
	if !strings.Contains(dot, `"bar" -> "foo"`) {
		t.Error("ToDOT() with HideRoot dropped a regular edge")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Error("normalizeViewBox() should leave svg without viewBox untouched")
	}
}
