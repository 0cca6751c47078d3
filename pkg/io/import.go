package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// ReadJSON decodes a JSON graph from r.
//
// ReadJSON returns an ErrCodeInvalidFormat error if the JSON is malformed,
// a node id is invalid or duplicated, or a request names a dependee that is
// neither the root module nor a node of the document. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (*resolved.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}

	known := make(map[resolved.ID]bool, len(data.Nodes))
	for _, n := range data.Nodes {
		if n.ID.IsZero() {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node without id")
		}
		if known[n.ID] {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate node %s", n.ID)
		}
		known[n.ID] = true
	}

	g := resolved.NewGraph()
	for _, n := range data.Nodes {
		d := resolved.NewDependency(n.ID, n.Version)
		for _, req := range n.Requested {
			if !req.By.IsRoot() && !known[req.By] {
				return nil, errors.New(errors.ErrCodeInvalidFormat,
					"node %s: unknown dependee %s", n.ID, req.By)
			}
			d.SetRequestedVersion(req.By, req.Version)
		}
		for _, p := range n.Artifacts {
			d.AddArtifactPath(p)
		}
		g.Put(d)
	}
	return g, nil
}

// Unmarshal decodes a JSON graph from data.
func Unmarshal(data []byte) (*resolved.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads the JSON file at path and returns the decoded graph.
func ImportJSON(path string) (*resolved.Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
