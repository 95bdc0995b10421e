package errors

import (
	"strings"
	"unicode"
)

// ValidateRepositoryName validates a Nexus repository name.
// It rejects names that could be used for path traversal when the name
// becomes a directory under the output root.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 200 characters
func ValidateRepositoryName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRepository, "repository name cannot be empty")
	}

	if len(name) > 200 {
		return New(ErrCodeInvalidRepository, "repository name too long (max 200 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRepository, "repository name contains control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidRepository, "repository name contains path characters: %q", name)
	}

	return nil
}

// ValidateArtifactPath validates a server-supplied artifact path before it
// is joined onto the output root.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateArtifactPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "artifact path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "artifact path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "artifact path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "artifact path must be relative (cannot start with /)")
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "artifact path cannot contain traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "artifact path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a server URL string.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
