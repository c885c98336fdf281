package media

import (
	"path/filepath"
	"strings"
)

// Within reports whether path lies inside one of roots after cleaning and
// symlink resolution. Empty roots are ignored.
func Within(path string, roots ...string) bool {
	target, ok := canonical(path)
	if !ok {
		return false
	}

	for _, root := range roots {
		if root == "" {
			continue
		}
		base, ok := canonical(root)
		if !ok {
			continue
		}
		rel, err := filepath.Rel(base, target)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func canonical(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, true
}
