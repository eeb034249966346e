// Package executor runs resolved module sources inside fresh evaluation
// scopes, dispatches their step blocks to registered runner handlers, and
// maintains the pipeline state the steps produce.
package executor

import (
	"context"
	"errors"
	"strings"

	"github.com/vk/pipelibgo/internal/conftree"
	"github.com/vk/pipelibgo/internal/ctxlog"
	"github.com/vk/pipelibgo/internal/handlers"
	"github.com/vk/pipelibgo/internal/library"
	"github.com/vk/pipelibgo/internal/stacktrace"
)

// stateVariable is the name under which accumulated step outputs are
// exposed to module expressions. The name is reserved; a caller binding
// with the same name is shadowed by the state snapshot.
const stateVariable = "step"

// Executor is the module-invocation boundary of the layer. It is driven by
// one logical thread of control per pipeline run, so it carries no
// internal locking.
type Executor struct {
	handlers *handlers.Handlers
	resolver *library.Resolver
	pruner   *stacktrace.Pruner
	state    map[string]any
}

// New creates an executor over the given handler registry. resolver may be
// nil when module-to-module calls are not needed; a call block then fails
// at execution time.
func New(h *handlers.Handlers, resolver *library.Resolver) *Executor {
	return &Executor{
		handlers: h,
		resolver: resolver,
		pruner:   stacktrace.NewPruner(IsBoundaryFrame),
		state:    make(map[string]any),
	}
}

// IsBoundaryFrame reports whether f is the module-invocation boundary.
// Every module execution enters through (*Executor).Execute, so a failure
// trace pruned back to this frame starts at the invoked module rather than
// host scaffolding.
func IsBoundaryFrame(f stacktrace.Frame) bool {
	return strings.HasSuffix(f.Function, "(*Executor).Execute")
}

// Execute runs one module source inside a fresh scope. path labels the
// execution for diagnostics and bindings become the scope's variable
// namespace; the scope is discarded when Execute returns. Failures
// propagate to the caller after stack pruning, never swallowed and never
// retried here. Host cancellation signals pass through untouched.
func (e *Executor) Execute(ctx context.Context, source, path string, bindings map[string]any) error {
	logger := ctxlog.FromContext(ctx).With("module", path)
	logger.Info("▶️ Executing module")

	err := e.run(ctx, source, path, bindings)
	if err == nil {
		logger.Info("✅ Finished module")
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// The host's suspension machinery owns this signal.
		return err
	}

	var execErr *ModuleExecutionError
	if errors.As(err, &execErr) {
		// Already attributed at the failure point; keep the innermost view.
		return err
	}

	return &ModuleExecutionError{
		Path:   path,
		Frames: e.pruner.Prune(stacktrace.Capture(0)),
		Err:    err,
	}
}

// State returns the pipeline state accumulated so far, wrapped so callers
// can read individual keys but cannot walk its full shape.
func (e *Executor) State() *conftree.Protected {
	return conftree.NewProtected(e.state)
}
