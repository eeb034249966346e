// Package http_request provides a runner for making individual HTTP
// requests from pipeline modules.
package http_request

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/vk/pipelibgo/internal/ctxlog"
	"github.com/vk/pipelibgo/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments for the http_request runner.
type Input struct {
	URL            string            `pl:"url"`
	Method         string            `pl:"method,optional"`
	Body           string            `pl:"body,optional"`
	Headers        map[string]string `pl:"headers,optional"`
	TimeoutSeconds int               `pl:"timeout_seconds,optional"`
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("http_request", &handlers.Handler{
		NewInput: func() any { return new(Input) },
		Fn:       onRunHTTPRequest,
	})
}

// onRunHTTPRequest is the handler for the 'http_request' runner.
func onRunHTTPRequest(ctx context.Context, input *Input) (map[string]any, error) {
	method := strings.ToUpper(input.Method)
	if method == "" {
		method = "GET"
	}
	ctxlog.FromContext(ctx).Info("Making HTTP request", "method", method, "url", input.URL)

	client := resty.New()
	defer client.Close()
	if input.TimeoutSeconds > 0 {
		client.SetTimeout(time.Duration(input.TimeoutSeconds) * time.Second)
	}

	req := client.R().SetContext(ctx)
	if len(input.Headers) > 0 {
		req.SetHeaders(input.Headers)
	}
	if input.Body != "" {
		req.SetBody(input.Body)
	}

	resp, err := req.Execute(method, input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	return map[string]any{
		"status_code": int64(resp.StatusCode()),
		"body":        resp.String(),
	}, nil
}
