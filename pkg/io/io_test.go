package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

func sampleGraph() *resolved.Graph {
	foo := resolved.NewDependency(resolved.MustID("foo", "foo-interop"), "2.0")
	foo.SetRequestedVersion(resolved.Root, "2.0")
	foo.AddArtifactPath("/lib/foo.klib")

	bar := resolved.NewDependency(resolved.MustID("bar"), "")
	bar.SetRequestedVersion(foo.ID, "")
	bar.SetRequestedVersion(resolved.Root, "1.0")
	bar.AddArtifactPath("/lib/bar-a.klib")
	bar.AddArtifactPath("/lib/bar-b.klib")

	return resolved.GraphOf(foo, bar)
}

func TestRoundTrip(t *testing.T) {
	g := sampleGraph()

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if !got.Equal(g) {
		t.Errorf("round trip changed graph:\n got %v\nwant %v", got.IDs(), g.IDs())
	}
}

func TestWriteJSONShape(t *testing.T) {
	data, err := Marshal(sampleGraph())
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	for _, want := range []string{
		`"id":"foo,foo-interop"`,
		`"aliases":["foo","foo-interop"]`,
		`"requested":[{"by":"/","version":"2.0"}]`,
		`{"by":"foo,foo-interop","version":""}`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Marshal output missing %s:\n%s", want, data)
		}
	}
	if strings.Contains(string(data), `"version":"","requested"`) {
		t.Error("unknown selected version should be omitted")
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	g := sampleGraph()
	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON error: %v", err)
	}
	if !got.Equal(g) {
		t.Error("file round trip changed graph")
	}

	_, err = ImportJSON(filepath.Join(t.TempDir(), "missing.json"))
	if errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("ImportJSON(missing) code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"nodes": [`},
		{"missing id", `{"nodes": [{"version": "1.0"}]}`},
		{"invalid id", `{"nodes": [{"id": "a,,b"}]}`},
		{"duplicate", `{"nodes": [{"id": "a"}, {"id": "a"}]}`},
		{"unknown dependee", `{"nodes": [{"id": "a", "requested": [{"by": "b", "version": "1"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if err == nil {
				t.Fatal("Unmarshal() succeeded, want error")
			}
			if got := errors.GetCode(err); got != errors.ErrCodeInvalidFormat {
				t.Errorf("GetCode() = %v, want %v", got, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestReadJSONForwardReference(t *testing.T) {
	g, err := Unmarshal([]byte(`{"nodes": [
		{"id": "a", "requested": [{"by": "b", "version": "1.0"}]},
		{"id": "b", "requested": [{"by": "/", "version": "2.0"}]}
	]}`))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	a, _ := g.Get(resolved.MustID("a"))
	if v, ok := a.RequestedVersion(resolved.MustID("b")); !ok || v != "1.0" {
		t.Errorf("a requested by b = %q, %v; want 1.0", v, ok)
	}
}
