// Package library implements module resolution across the pipeline run's
// attached libraries. Each library is a host-materialized directory of
// resources; a logical module path is resolved against every library's
// ordered module-search-paths, collecting all matching sources.
package library

import "fmt"

// Library describes one attached library: its name and the root directory
// under which the checkout layer has materialized its resources. The set of
// attached libraries and their order is fixed for the duration of a run.
type Library struct {
	Name string
	Root string
}

// ModuleRef is one resolved module: its library-qualified resource path and
// full source text. A ModuleRef is immutable and consumed once by the
// executor; it has no identity beyond the run.
type ModuleRef struct {
	Path   string
	Source string
}

// EnvironmentError reports that the host run context is missing the
// metadata this layer needs, such as the set of attached libraries. It is
// a precondition violation of the calling environment, not a per-module
// error, and is always fatal to the calling operation.
type EnvironmentError struct {
	Reason string
}

// Error implements the error interface for EnvironmentError.
func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("run environment: %s", e.Reason)
}
