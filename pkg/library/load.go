package library

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/depmerge/pkg/errors"
)

type descriptorFile struct {
	Libraries []Descriptor `toml:"library" yaml:"libraries"`
}

// Load reads a descriptor file. The format is chosen by extension:
// .toml, or .yaml/.yml. Relative artifact paths are resolved against the
// directory of the descriptor file.
func Load(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "library descriptor %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "read %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)), filepath.Dir(abs))
}

// Parse decodes descriptor data. ext selects the format (".toml", ".yaml",
// ".yml") and baseDir anchors relative artifact paths.
func Parse(data []byte, ext, baseDir string) ([]Descriptor, error) {
	var f descriptorFile
	switch ext {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "parse toml")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "parse yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported descriptor format: %q", ext)
	}

	for i := range f.Libraries {
		if p := f.Libraries[i].Path; p != "" && !filepath.IsAbs(p) {
			f.Libraries[i].Path = filepath.Join(baseDir, p)
		}
	}
	if err := Validate(f.Libraries); err != nil {
		return nil, err
	}
	return f.Libraries, nil
}

// Validate checks names and paths and rejects duplicate names or aliases.
func Validate(libs []Descriptor) error {
	seen := make(map[string]string)
	for _, l := range libs {
		for _, n := range Names(l) {
			if err := errors.ValidateAliasName(n); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "library %q", l.LibName)
			}
			if owner, dup := seen[n]; dup {
				return errors.New(errors.ErrCodeInvalidDescriptor, "name %q used by both %q and %q", n, owner, l.LibName)
			}
			seen[n] = l.LibName
		}
		if err := errors.ValidateArtifactPath(l.Path); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "library %q", l.LibName)
		}
	}
	return nil
}

// Libraries converts descriptors to the Library interface.
func Libraries(descs []Descriptor) []Library {
	out := make([]Library, len(descs))
	for i, d := range descs {
		out[i] = d
	}
	return out
}
