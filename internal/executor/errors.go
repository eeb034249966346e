package executor

import (
	"fmt"

	"github.com/vk/pipelibgo/internal/stacktrace"
)

// ModuleExecutionError wraps any failure raised while running module
// source. Path attributes the failure to the module's resource path;
// Frames holds the pruned stack span from the module-invocation boundary
// down to the point of failure.
type ModuleExecutionError struct {
	Path   string
	Frames []stacktrace.Frame
	Err    error
}

// Error implements the error interface for ModuleExecutionError.
func (e *ModuleExecutionError) Error() string {
	return fmt.Sprintf("module %s: %v", e.Path, e.Err)
}

// Unwrap lets errors.Is and errors.As reach the underlying failure.
func (e *ModuleExecutionError) Unwrap() error {
	return e.Err
}
