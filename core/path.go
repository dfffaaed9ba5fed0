package sga

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath turns the resource of an open request into an absolute path.
//
// A leading "~" is expanded to the user's home directory. Relative paths are
// resolved against cwd, or against the process working directory when cwd is
// empty. The filesystem is not consulted.
func ResolvePath(resource, cwd string) (string, error) {
	p := resource
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("sga: expand %q: %w", resource, err)
		}
		p = filepath.Join(home, p[1:])
	}
	if !filepath.IsAbs(p) && cwd != "" {
		p = filepath.Join(cwd, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("sga: resolve %q: %w", resource, err)
	}
	return abs, nil
}

// NormalizePath converts a path inside an archive to fs.ValidPath format.
//
// It performs the following transformations:
//   - Converts backslashes to slashes: `data\art` → "data/art"
//   - Strips leading and trailing slashes: "/data/art/" → "data/art"
//   - Collapses consecutive slashes: "data//art" → "data/art"
//   - Converts empty string and "/" to root: "" → "."
//
// Paths containing "." or ".." elements are preserved and will be rejected
// by fs.ValidPath.
func NormalizePath(p string) string {
	p = strings.Trim(strings.ReplaceAll(p, `\`, "/"), "/")
	if p == "" {
		return "."
	}

	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return "."
	}
	return strings.Join(result, "/")
}
