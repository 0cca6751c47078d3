package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/depmerge/pkg/resolved"
)

type graph struct {
	Nodes []node `json:"nodes"`
}

type node struct {
	ID        resolved.ID `json:"id"`
	Aliases   []string    `json:"aliases,omitempty"`
	Version   string      `json:"version,omitempty"`
	Requested []request   `json:"requested,omitempty"`
	Artifacts []string    `json:"artifacts,omitempty"`
}

type request struct {
	By      resolved.ID `json:"by"`
	Version string      `json:"version"`
}

// fromGraph converts g to its JSON document form.
func fromGraph(g *resolved.Graph) graph {
	out := graph{Nodes: make([]node, 0, g.Len())}
	for _, d := range g.Dependencies() {
		n := node{
			ID:        d.ID,
			Aliases:   d.ID.Names(),
			Version:   d.SelectedVersion,
			Artifacts: d.ArtifactPaths(),
		}
		for by, v := range d.Requests() {
			n.Requested = append(n.Requested, request{By: by, Version: v})
		}
		out.Nodes = append(out.Nodes, n)
	}
	return out
}

// Marshal returns the JSON document for g without indentation.
func Marshal(g *resolved.Graph) ([]byte, error) {
	return json.Marshal(fromGraph(g))
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g *resolved.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *resolved.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
