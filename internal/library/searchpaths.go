package library

import (
	"path"
	"strings"
)

// SearchPaths is the ordered, deduplicated list of relative directories
// consulted within each library when resolving a module path. It is built
// once per run and immutable afterwards; the resolver receives it
// explicitly rather than consulting process-wide state.
type SearchPaths struct {
	paths []string
}

// NewSearchPaths normalizes, deduplicates, and freezes the given relative
// directories, preserving first-occurrence order. Empty and root-escaping
// entries are dropped.
func NewSearchPaths(paths ...string) SearchPaths {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.Trim(path.Clean(strings.TrimSpace(p)), "/")
		if p == "" || p == "." || p == ".." || strings.HasPrefix(p, "../") {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return SearchPaths{paths: out}
}

// List returns the search paths in configured order. The returned slice is
// a copy; callers cannot mutate the frozen list.
func (s SearchPaths) List() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Len returns the number of configured search paths.
func (s SearchPaths) Len() int {
	return len(s.paths)
}
