package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vk/pipelibgo/internal/ctxlog"
)

// moduleExt is the file extension module sources are stored under.
const moduleExt = ".hcl"

// Resolver resolves logical module paths against the run's attached
// libraries. Lookups are read-only and never cached; resolution happens at
// module-invocation granularity, not in hot loops.
type Resolver struct {
	libraries   []Library
	searchPaths SearchPaths
}

// NewResolver builds a resolver over the run's attached libraries. The
// attachment order defines resolution precedence. Being invoked with no
// attached libraries means the host run context did not provide the
// expected metadata, which is an *EnvironmentError.
func NewResolver(libraries []Library, searchPaths SearchPaths) (*Resolver, error) {
	if len(libraries) == 0 {
		return nil, &EnvironmentError{Reason: "no libraries attached to the current run"}
	}
	for _, lib := range libraries {
		if lib.Name == "" {
			return nil, &EnvironmentError{Reason: "attached library has no name"}
		}
		if lib.Root == "" {
			return nil, &EnvironmentError{Reason: fmt.Sprintf("library %q has no resource root", lib.Name)}
		}
	}

	libs := make([]Library, len(libraries))
	copy(libs, libraries)
	return &Resolver{libraries: libs, searchPaths: searchPaths}, nil
}

// Resolve returns every module source matching modulePath: libraries in
// attachment order outermost, search paths in configured order innermost,
// at most one match per (library, search path). The logical path may be
// dotted ("deploy.canary") or slash-separated ("deploy/canary"). No match
// yields an empty slice, not an error — whether that is fatal is the
// caller's decision.
func (r *Resolver) Resolve(ctx context.Context, modulePath string) ([]ModuleRef, error) {
	logger := ctxlog.FromContext(ctx)

	rel, err := normalizeModulePath(modulePath)
	if err != nil {
		return nil, err
	}

	var refs []ModuleRef
	for _, lib := range r.libraries {
		for _, sp := range r.searchPaths.List() {
			resource := path.Join("resources", sp, rel+moduleExt)
			candidate := filepath.Join(lib.Root, filepath.FromSlash(resource))

			src, err := os.ReadFile(candidate)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("reading module candidate %s: %w", candidate, err)
			}

			ref := ModuleRef{Path: lib.Name + "/" + resource, Source: string(src)}
			refs = append(refs, ref)
			logger.Debug("Resolved module source.", "library", lib.Name, "search_path", sp, "resource", resource)
		}
	}

	logger.Debug("Module resolution finished.", "module", rel, "matches", len(refs))
	return refs, nil
}

// normalizeModulePath maps a logical module name onto a library-relative
// resource path. Dots act as path separators; the result must stay inside
// the library's resource tree.
func normalizeModulePath(modulePath string) (string, error) {
	p := strings.TrimSpace(modulePath)
	p = strings.TrimSuffix(p, moduleExt)
	if !strings.Contains(p, "/") {
		p = strings.ReplaceAll(p, ".", "/")
	}
	p = strings.Trim(path.Clean(p), "/")
	if p == "" || p == "." {
		return "", fmt.Errorf("empty module path")
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("module path %q escapes the library resource tree", modulePath)
	}
	return p, nil
}
