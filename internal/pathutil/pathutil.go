// Package pathutil normalises paths and keeps them inside the notes root.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's
// separator and cleans the result.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Relative returns target relative to root using forward slashes.
func Relative(root, target string) (string, error) {
	rel, err := filepath.Rel(NormalizePath(root), NormalizePath(target))
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// Within reports whether target is root itself or lives below it.
func Within(root, target string) bool {
	rel, err := Relative(root, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, "../"))
}

// Join resolves the given segments below root and rejects any result that
// escapes it.
func Join(root string, elem ...string) (string, error) {
	base := NormalizePath(root)
	joined := filepath.Join(append([]string{base}, elem...)...)
	if !Within(base, joined) {
		return "", fmt.Errorf("path %q escapes %q", filepath.Join(elem...), base)
	}
	return joined, nil
}
