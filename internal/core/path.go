package core

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

func ValidateSubdir(subdir string) error {
	if filepath.IsAbs(subdir) || strings.HasPrefix(filepath.ToSlash(subdir), "/") {
		return fmt.Errorf("%w: subdir must be a relative path, got %q", ErrInvalidArgument, subdir)
	}
	return nil
}

// PathLength returns the number of elements in a relative path:
// "a" is 1, "a/b" is 2, "" and "." are 0.
func PathLength(p string) (int, error) {
	if err := ValidateSubdir(p); err != nil {
		return 0, err
	}

	p = path.Clean(filepath.ToSlash(p))
	if p == "." {
		return 0, nil
	}

	return len(strings.Split(p, "/")), nil
}

// RelPrefix returns the prefix that climbs from subdir back to the bundle
// root, e.g. "a/b/c" gives "../../../".
func RelPrefix(subdir string) (string, error) {
	n, err := PathLength(subdir)
	if err != nil {
		return "", err
	}
	return strings.Repeat("../", n), nil
}

func ToManifestName(relPath string) string {
	return filepath.ToSlash(relPath)
}
