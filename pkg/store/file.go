package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matzehuels/depmerge/pkg/errors"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// FileStore keeps the latest record of each project as <dir>/<project>.json.
// Older records are overwritten.
type FileStore struct {
	dir string
}

// NewFileStore creates a store in dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create store dir")
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the record atomically via a temporary file.
func (s *FileStore) Save(_ context.Context, project string, g *resolved.Graph) (*Record, error) {
	rec, err := newRecord(project, g)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode record")
	}

	tmp, err := os.CreateTemp(s.dir, ".record-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "save %s", project)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "save %s", project)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "save %s", project)
	}
	if err := os.Rename(tmp.Name(), s.path(project)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "save %s", project)
	}
	return rec, nil
}

// Latest reads the record of project.
func (s *FileStore) Latest(_ context.Context, project string) (*Record, error) {
	if err := errors.ValidateProjectKey(project); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(project))
	if os.IsNotExist(err) {
		return nil, notFound(project)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read %s", project)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode record of %s", project)
	}
	return &rec, nil
}

// Close does nothing for file store.
func (s *FileStore) Close(context.Context) error { return nil }

func (s *FileStore) path(project string) string {
	return filepath.Join(s.dir, project+".json")
}

var _ Store = (*FileStore)(nil)
