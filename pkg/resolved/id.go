package resolved

import (
	"iter"
	"slices"
	"strings"

	"github.com/matzehuels/depmerge/pkg/errors"
)

// aliasSeparator joins alias names in the canonical rendering.
const aliasSeparator = ","

// Root identifies the top-level module consuming the graph. ValidateAliasName
// rejects its rendering, so no ID built from names equals Root.
var Root = ID{key: errors.RootName}

// ID is the identity of a dependency node: a sorted, deduplicated,
// non-empty set of alias names. The zero value is invalid.
type ID struct {
	key string
}

// NewID builds an ID from one or more alias names.
// It fails with ErrCodeInvalidID when no names are given or a name cannot be
// written to the text format.
func NewID(names ...string) (ID, error) {
	return IDFromNames(slices.Values(names))
}

// IDFromNames builds an ID from a sequence of alias names.
func IDFromNames(names iter.Seq[string]) (ID, error) {
	sorted := slices.Compact(slices.Sorted(names))
	if len(sorted) == 0 {
		return ID{}, errors.New(errors.ErrCodeInvalidID, "dependency id needs at least one name")
	}
	for _, n := range sorted {
		if err := errors.ValidateAliasName(n); err != nil {
			return ID{}, err
		}
	}
	return ID{key: strings.Join(sorted, aliasSeparator)}, nil
}

// MustID is like NewID but panics on error.
func MustID(names ...string) ID {
	id, err := NewID(names...)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseID parses the canonical rendering produced by ID.String.
func ParseID(s string) (ID, error) {
	return NewID(strings.Split(s, aliasSeparator)...)
}

// Names returns the sorted alias names.
func (id ID) Names() []string {
	if id.key == "" {
		return nil
	}
	return strings.Split(id.key, aliasSeparator)
}

// Contains reports whether name is one of the aliases.
func (id ID) Contains(name string) bool {
	return slices.Contains(id.Names(), name)
}

// String renders the aliases comma-joined in sorted order.
// This is also the wire format used by Encode.
func (id ID) String() string { return id.key }

// Equal reports whether both IDs carry the same alias set.
func (id ID) Equal(other ID) bool { return id.key == other.key }

// IsRoot reports whether id is the Root sentinel.
func (id ID) IsRoot() bool { return id == Root }

// IsZero reports whether id is the invalid zero value.
func (id ID) IsZero() bool { return id.key == "" }

// MarshalText implements encoding.TextMarshaler using the canonical rendering.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.key), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The root rendering
// decodes to Root.
func (id *ID) UnmarshalText(text []byte) error {
	if string(text) == errors.RootName {
		*id = Root
		return nil
	}
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
