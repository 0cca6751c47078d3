package cache

// Keyer generates cache keys.
type Keyer interface {
	// MergeKey returns the key for a merge result.
	MergeKey(opts MergeKeyOpts) string
	// DecodeKey returns the key for a decoded manifest.
	DecodeKey(manifest []byte) string
}

// MergeKeyOpts lists every input a merge result depends on.
type MergeKeyOpts struct {
	ManifestHash     string       `json:"manifest"`
	Libraries        []LibraryKey `json:"libraries"`
	ToolchainHome    string       `json:"toolchain_home"`
	ToolchainVersion string       `json:"toolchain_version"`
	BundledDir       string       `json:"bundled_dir"`
}

// LibraryKey is the part of one library that affects a merge result.
type LibraryKey struct {
	Names   []string `json:"names"`
	Path    string   `json:"path"`
	Depends []string `json:"depends"`
}

// DefaultKeyer produces "merge:<sha256>" and "decode:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MergeKey hashes every field of opts.
func (DefaultKeyer) MergeKey(opts MergeKeyOpts) string {
	return hashKey("merge", opts)
}

// DecodeKey hashes the manifest text.
func (DefaultKeyer) DecodeKey(manifest []byte) string {
	return "decode:" + Hash(manifest)
}

// ScopedKeyer prefixes every key of an inner keyer, so that several
// deployments can share one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// NewDefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// MergeKey returns the prefixed merge key.
func (k *ScopedKeyer) MergeKey(opts MergeKeyOpts) string {
	return k.prefix + k.inner.MergeKey(opts)
}

// DecodeKey returns the prefixed decode key.
func (k *ScopedKeyer) DecodeKey(manifest []byte) string {
	return k.prefix + k.inner.DecodeKey(manifest)
}
