// Package env_vars provides a runner that snapshots the process
// environment into pipeline state.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/pipelibgo/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("env_vars", &handlers.Handler{
		// No 'arguments' block.
		NewInput: func() any { return nil },
		Fn: func(ctx context.Context, input any) (map[string]any, error) {
			envMap := make(map[string]any)
			for _, e := range os.Environ() {
				pair := strings.SplitN(e, "=", 2)
				if len(pair) == 2 {
					envMap[pair[0]] = pair[1]
				}
			}
			return map[string]any{"all": envMap}, nil
		},
	})
}
