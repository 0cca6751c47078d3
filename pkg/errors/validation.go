package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// reservedAliasChars break the manifest wire format when they appear in a name:
// ',' joins aliases, '[' and ']' delimit versions and '#' prefixes dependee tokens.
const reservedAliasChars = ",[]#"

// RootName is the rendering of the root module. No alias may use it.
const RootName = "/"

// ValidateAliasName validates a single dependency alias.
//
// Names are written verbatim into manifest header lines, so the rules are:
//   - No empty names
//   - No control characters (this includes tabs and newlines)
//   - No leading or trailing whitespace
//   - None of the reserved characters , [ ] #
//   - Not the root module's name "/"
func ValidateAliasName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidID, "alias name cannot be empty")
	}
	if name == RootName {
		return New(ErrCodeInvalidID, "alias name %q is reserved for the root module", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "alias name contains invalid control characters: %q", name)
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidID, "alias name has surrounding whitespace: %q", name)
	}

	if i := strings.IndexAny(name, reservedAliasChars); i >= 0 {
		return New(ErrCodeInvalidID, "alias name contains reserved character %q: %q", name[i], name)
	}

	return nil
}

// ValidateVersion validates a version string for use inside brackets.
// The empty string is allowed and means "unknown".
func ValidateVersion(v string) error {
	if strings.ContainsAny(v, "[]\n\r") {
		return New(ErrCodeInvalidInput, "version contains reserved characters: %q", v)
	}
	return nil
}

// ValidateArtifactPath validates an artifact path recorded on a dependency.
//
// Validation rules:
//   - Path cannot be empty
//   - Path must be absolute
//   - No newlines or other control characters
//   - No leading or trailing whitespace
func ValidateArtifactPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "artifact path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "artifact path contains invalid characters: %q", path)
		}
	}

	if strings.TrimSpace(path) != path {
		return New(ErrCodeInvalidPath, "artifact path has surrounding whitespace: %q", path)
	}

	if !filepath.IsAbs(path) {
		return New(ErrCodeInvalidPath, "artifact path must be absolute: %q", path)
	}

	return nil
}

// ValidateProjectKey validates a key used to name persisted graphs.
// It rejects anything that could escape a storage directory.
func ValidateProjectKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "project key cannot be empty")
	}

	const maxKeyLength = 200
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidInput, "project key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "project key contains invalid characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidInput, "project key contains invalid characters: %q", pattern)
		}
	}

	return nil
}
