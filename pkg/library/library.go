// Package library describes the resolved libraries taking part in a build.
//
// Each [Library] is one physical artifact with its declared dependency
// names. Libraries know nothing about versions negotiated across the graph;
// the only version they carry is the effective version a [Toolchain] infers
// from where the artifact lives.
//
// Descriptor files list libraries in TOML or YAML:
//
//	[[library]]
//	name    = "org.example:foo"
//	aliases = ["foo-cinterop-bar"]
//	path    = "libs/foo.klib"
//	depends = ["stdlib"]
package library

import (
	"path/filepath"
	"strings"
)

// DefaultBundledDir is the toolchain subdirectory holding bundled libraries.
const DefaultBundledDir = "klib"

// Library is a resolved library participating in compilation.
type Library interface {
	// Name returns the unique library name.
	Name() string
	// Aliases returns additional names the library is known under.
	Aliases() []string
	// ArtifactPath returns the absolute path of the library artifact.
	ArtifactPath() string
	// Dependencies returns the names of the libraries this one depends on.
	Dependencies() []string
}

// Descriptor is a Library loaded from a descriptor file.
type Descriptor struct {
	LibName    string   `toml:"name" yaml:"name" json:"name"`
	LibAliases []string `toml:"aliases" yaml:"aliases" json:"aliases,omitempty"`
	Path       string   `toml:"path" yaml:"path" json:"path"`
	Depends    []string `toml:"depends" yaml:"depends" json:"depends,omitempty"`
}

func (d Descriptor) Name() string           { return d.LibName }
func (d Descriptor) Aliases() []string      { return d.LibAliases }
func (d Descriptor) ArtifactPath() string   { return d.Path }
func (d Descriptor) Dependencies() []string { return d.Depends }

var _ Library = Descriptor{}

// Names returns the library name followed by its aliases.
func Names(l Library) []string {
	return append([]string{l.Name()}, l.Aliases()...)
}

// Toolchain identifies the toolchain distribution the build runs with.
type Toolchain struct {
	Home       string `json:"home,omitempty"`        // Distribution root directory
	Version    string `json:"version,omitempty"`     // Toolchain version string
	BundledDir string `json:"bundled_dir,omitempty"` // Bundled library subdirectory of Home (default: "klib")
}

// WithDefaults returns a copy of t with zero values replaced by defaults.
func (t Toolchain) WithDefaults() Toolchain {
	if t.BundledDir == "" {
		t.BundledDir = DefaultBundledDir
	}
	return t
}

// EffectiveVersion returns the toolchain version when path lives inside the
// toolchain's bundled-library directory, and "" otherwise.
func (t Toolchain) EffectiveVersion(path string) string {
	if t.Home == "" || path == "" {
		return ""
	}
	t = t.WithDefaults()
	dir := filepath.Clean(filepath.Join(t.Home, t.BundledDir))
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return t.Version
}
