// Package security validates user-supplied file paths.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for paths that are empty or carry characters
// that have a meaning to a shell or to a SQLite URI.
var ErrUnsafePath = errors.New("unsafe file path")

const forbiddenChars = ";&|$`(){}<>!?#\n\r"

// CleanPath returns path as a clean absolute path, resolving symlinks when
// the file already exists.
func CleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsafePath)
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("%w: forbidden character %q in %s", ErrUnsafePath, path[i], path)
	}

	clean, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(clean)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return clean, nil
		}
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}
