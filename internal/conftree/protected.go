package conftree

import (
	"fmt"
	"sort"
)

// UsageError reports a programming mistake in calling code, such as bulk
// iteration over a protected configuration. It is always fatal and never
// retried.
type UsageError struct {
	Op     string
	Reason string
}

// Error implements the error interface for UsageError.
func (e *UsageError) Error() string {
	return fmt.Sprintf("usage error in %s: %s", e.Op, e.Reason)
}

// Entry is a single top-level key/value pair of a protected configuration.
type Entry struct {
	Key   string
	Value any
}

// EntryLister is the seam through which a protected configuration's entry
// set can be enumerated. The production implementation always refuses; a
// test harness may substitute StaticLister to observe the real entries.
type EntryLister interface {
	Entries(tree map[string]any) ([]Entry, error)
}

// Protected wraps a configuration mapping so pipeline code cannot walk its
// entire shape and tie itself to undocumented structure. Individual values
// remain available through Get.
type Protected struct {
	tree   map[string]any
	lister EntryLister
}

// NewProtected wraps tree with the production entry lister.
func NewProtected(tree map[string]any) *Protected {
	return &Protected{tree: tree, lister: denyLister{}}
}

// WithLister returns a copy of p that enumerates entries through l.
// Intended for test harnesses only.
func (p *Protected) WithLister(l EntryLister) *Protected {
	return &Protected{tree: p.tree, lister: l}
}

// Get returns the value stored under key, and whether the key exists.
func (p *Protected) Get(key string) (any, bool) {
	v, ok := p.tree[key]
	return v, ok
}

// Entries enumerates the top-level entries through the configured lister.
// Under the production lister this always fails with *UsageError.
func (p *Protected) Entries() ([]Entry, error) {
	return p.lister.Entries(p.tree)
}

// denyLister is the production EntryLister.
type denyLister struct{}

func (denyLister) Entries(map[string]any) ([]Entry, error) {
	return nil, &UsageError{
		Op:     "Entries",
		Reason: "bulk iteration over a protected configuration is not allowed; use Get for individual keys",
	}
}

// StaticLister returns the real entry set, sorted by key for deterministic
// assertions. It exists for tests; production code must never install it.
type StaticLister struct{}

// Entries implements EntryLister.
func (StaticLister) Entries(tree map[string]any) ([]Entry, error) {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: tree[k]})
	}
	return entries, nil
}
