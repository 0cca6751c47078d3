// Package store persists merged dependency graphs per project.
//
// Each [Record] keeps the graph in the text format of package resolved, so a
// stored graph can be handed to the build unchanged. Two backends exist:
// [FileStore] for single-machine use and [MongoStore] for the HTTP server.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Record is one saved graph.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Project   string    `json:"project" bson:"project"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	Text      string    `json:"text" bson:"text"`
}

// Graph decodes the stored text. A record that no longer decodes yields an
// ErrCodeInvalidManifest error.
func (r *Record) Graph() (*resolved.Graph, error) {
	deps, err := resolved.DecodeStrict([]byte(r.Text))
	if err != nil {
		return nil, err
	}
	return resolved.GraphOf(deps...), nil
}

// Store saves and retrieves graphs.
type Store interface {
	// Save stores g as the newest record of project.
	Save(ctx context.Context, project string, g *resolved.Graph) (*Record, error)
	// Latest returns the newest record of project, or an ErrCodeNotFound error.
	Latest(ctx context.Context, project string) (*Record, error)
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// newRecord validates project and encodes g into a fresh record.
func newRecord(project string, g *resolved.Graph) (*Record, error) {
	if err := errors.ValidateProjectKey(project); err != nil {
		return nil, err
	}
	var text strings.Builder
	if err := resolved.EncodeGraph(&text, g); err != nil {
		return nil, err
	}
	return &Record{
		ID:        uuid.NewString(),
		Project:   project,
		CreatedAt: time.Now().UTC(),
		Nodes:     g.Len(),
		Text:      text.String(),
	}, nil
}

func notFound(project string) error {
	return errors.New(errors.ErrCodeNotFound, "no graph stored for project %q", project)
}
