package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/pipelibgo/internal/handlers"
)

func TestEnvVars(t *testing.T) {
	t.Setenv("PIPELIBGO_TEST_MARKER", "present")

	h := handlers.New()
	(&Module{}).Register(h)

	handler, ok := h.Lookup("env_vars")
	require.True(t, ok)
	assert.Nil(t, handler.NewInput())

	fn := handler.Fn.(func(context.Context, any) (map[string]any, error))
	output, err := fn(context.Background(), nil)
	require.NoError(t, err)

	all, ok := output["all"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "present", all["PIPELIBGO_TEST_MARKER"])
}
