package hclcodec

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/pipelibgo/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func parseBody(t *testing.T, src string) hcl.Body {
	t.Helper()
	file, diags := hclparse.NewParser().ParseHCL([]byte(src), "args.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	return file.Body
}

type decodeInput struct {
	URL     string            `pl:"url"`
	Method  string            `pl:"method,optional"`
	Retries int               `pl:"retries,optional"`
	Tags    []string          `pl:"tags,optional"`
	Extra   map[string]any    `pl:"extra,optional"`
	Headers map[string]string `pl:"headers,optional"`
}

func TestDecodeArguments(t *testing.T) {
	t.Run("decodes typed fields with implicit conversion", func(t *testing.T) {
		body := parseBody(t, `
			url     = "https://example.com"
			method  = "POST"
			retries = "3"
			tags    = ["a", "b"]
		`)

		var input decodeInput
		err := DecodeArguments(testContext(), &input, body, &hcl.EvalContext{})
		require.NoError(t, err)

		assert.Equal(t, "https://example.com", input.URL)
		assert.Equal(t, "POST", input.Method)
		assert.Equal(t, 3, input.Retries)
		assert.Equal(t, []string{"a", "b"}, input.Tags)
	})

	t.Run("generic fields decode into configuration trees", func(t *testing.T) {
		body := parseBody(t, `
			url   = "https://example.com"
			extra = { region = "eu", nested = { canary = true } }
		`)

		var input decodeInput
		err := DecodeArguments(testContext(), &input, body, &hcl.EvalContext{})
		require.NoError(t, err)

		want := map[string]any{
			"region": "eu",
			"nested": map[string]any{"canary": true},
		}
		assert.Equal(t, want, input.Extra)
	})

	t.Run("expressions evaluate against the provided scope", func(t *testing.T) {
		body := parseBody(t, `url = base_url`)
		evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{
			"base_url": cty.StringVal("https://internal"),
		}}

		var input decodeInput
		err := DecodeArguments(testContext(), &input, body, evalCtx)
		require.NoError(t, err)
		assert.Equal(t, "https://internal", input.URL)
	})

	t.Run("missing required argument fails", func(t *testing.T) {
		body := parseBody(t, `method = "GET"`)

		var input decodeInput
		err := DecodeArguments(testContext(), &input, body, &hcl.EvalContext{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `missing required argument "url"`)
	})

	t.Run("missing optional arguments are skipped", func(t *testing.T) {
		body := parseBody(t, `url = "https://example.com"`)

		var input decodeInput
		err := DecodeArguments(testContext(), &input, body, &hcl.EvalContext{})
		require.NoError(t, err)
		assert.Empty(t, input.Method)
		assert.Zero(t, input.Retries)
	})

	t.Run("nil body decodes a fully optional struct", func(t *testing.T) {
		var input struct {
			Message string `pl:"message,optional"`
		}
		err := DecodeArguments(testContext(), &input, nil, &hcl.EvalContext{})
		require.NoError(t, err)
	})

	t.Run("undecodable values report the argument name", func(t *testing.T) {
		body := parseBody(t, `
			url     = "https://example.com"
			retries = ["not", "a", "number"]
		`)

		var input decodeInput
		err := DecodeArguments(testContext(), &input, body, &hcl.EvalContext{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retries")
	})

	t.Run("non-pointer target is rejected", func(t *testing.T) {
		err := DecodeArguments(testContext(), decodeInput{}, nil, &hcl.EvalContext{})
		assert.Error(t, err)
	})
}
