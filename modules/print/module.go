// Package print provides a runner that writes values from the module's
// scope to the application output.
package print

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/vk/pipelibgo/internal/ctxlog"
	"github.com/vk/pipelibgo/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Out receives the printed lines. Defaults to discarding when unset.
	Out io.Writer
}

// Input defines the arguments for the print runner.
type Input struct {
	Message string            `pl:"message,optional"`
	Values  map[string]string `pl:"values,optional"`
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	out := m.Out
	if out == nil {
		out = io.Discard
	}

	h.Register("print", &handlers.Handler{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input *Input) (map[string]any, error) {
			ctxlog.FromContext(ctx).Debug("Printing step values.")

			if input.Message != "" {
				fmt.Fprintln(out, input.Message)
			}

			// Sort keys for consistent output.
			keys := make([]string, 0, len(input.Values))
			for k := range input.Values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				fmt.Fprintf(out, "%s = %q\n", k, input.Values[k])
			}

			return nil, nil
		},
	})
}
