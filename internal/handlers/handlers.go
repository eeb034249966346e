// Package handlers stores the mapping between the runner names referenced
// by module step blocks and the compiled Go functions that implement them.
//
// The registry is populated once during application startup; a name
// registered twice is a programmer error and panics immediately.
package handlers

import (
	"fmt"
	"log/slog"
	"sort"
)

// Handler holds the compiled Go parts of a runner.
type Handler struct {
	// NewInput allocates the input struct the runner's arguments decode
	// into. A nil return means the runner takes no arguments.
	NewInput func() any

	// Fn is the runner function. Its shape must be
	// func(ctx context.Context, input *T) (map[string]any, error); the
	// executor invokes it reflectively.
	Fn any
}

// Module is the interface builtin module packages implement to contribute
// their runners to the registry.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all registered runners for one application instance.
type Handlers struct {
	all map[string]*Handler
}

// New creates an empty handler registry.
func New() *Handlers {
	return &Handlers{all: make(map[string]*Handler)}
}

// Register registers a runner handler under name.
func (h *Handlers) Register(name string, handler *Handler) {
	if _, exists := h.all[name]; exists {
		panic(fmt.Sprintf("runner handler with name '%s' already registered", name))
	}
	slog.Debug("Registering runner handler.", "name", name)
	h.all[name] = handler
}

// Lookup returns the handler registered under name.
func (h *Handlers) Lookup(name string) (*Handler, bool) {
	handler, ok := h.all[name]
	return handler, ok
}

// Names returns all registered runner names, sorted.
func (h *Handlers) Names() []string {
	names := make([]string, 0, len(h.all))
	for name := range h.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
