// Package runscope builds the isolated evaluation scope a single module
// execution runs in.
package runscope

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/pipelibgo/internal/conftree"
)

// Scope is a one-shot evaluation context with its own variable namespace.
// It inherits functions from the parent context but never exposes the
// parent's variables. Each module execution allocates a fresh Scope and
// discards it when the execution ends; a Scope is used by exactly one
// in-flight execution and is never pooled or reused.
type Scope struct {
	evalCtx *hcl.EvalContext
}

// New builds a Scope seeded with bindings. Each binding is installed as a
// top-level variable under its own name. Values are deep-copied on the way
// in, so the executed module cannot mutate caller-owned state through the
// scope.
func New(parent *hcl.EvalContext, bindings map[string]any) (*Scope, error) {
	vars := make(map[string]cty.Value, len(bindings))
	for name, v := range bindings {
		cv, err := conftree.ToCty(conftree.Clone(v))
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", name, err)
		}
		vars[name] = cv
	}

	// Deliberately not a child context: chained contexts fall back to the
	// parent's variables on lookup, which would leak the surrounding
	// execution's namespace into the module. Only functions carry over.
	evalCtx := &hcl.EvalContext{Variables: vars}
	if parent != nil {
		evalCtx.Functions = parent.Functions
	}

	return &Scope{evalCtx: evalCtx}, nil
}

// EvalContext returns the scope's HCL evaluation context.
func (s *Scope) EvalContext() *hcl.EvalContext {
	return s.evalCtx
}

// SetVariable installs or replaces a single variable in the scope. The
// executor uses it to refresh the pipeline-state variable between steps.
func (s *Scope) SetVariable(name string, v cty.Value) {
	s.evalCtx.Variables[name] = v
}

// Variable returns the named variable, and whether it is set in this scope
// (parent variables are deliberately not visible).
func (s *Scope) Variable(name string) (cty.Value, bool) {
	v, ok := s.evalCtx.Variables[name]
	return v, ok
}
