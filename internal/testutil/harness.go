// Package testutil provides the shared harness for integration tests: it
// materializes in-memory library file maps into a temp directory, runs the
// full application against them, and captures the log output.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/pipelibgo/internal/app"
	"github.com/vk/pipelibgo/internal/handlers"
	"github.com/vk/pipelibgo/internal/library"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunOptions configures a harness run.
type RunOptions struct {
	// Libraries lists library names in attachment order. Each library's
	// files live under "<name>/..." keys in Files.
	Libraries []string

	// Files maps paths relative to the temp root (e.g.
	// "shared/resources/modules/greet.hcl") to file contents.
	Files map[string]string

	// EntryModule is the logical module path the run starts from.
	EntryModule string

	// SearchPaths defaults to ["modules"] when empty.
	SearchPaths []string

	// Bindings seed the entry module's scope.
	Bindings map[string]any

	// Modules overrides the builtin runner set when non-empty.
	Modules []handlers.Module
}

// RunPipelineTest materializes opts.Files under a temp directory, attaches
// the named libraries in order, and runs the app end to end using a
// default background context.
func RunPipelineTest(t *testing.T, opts RunOptions) *HarnessResult {
	t.Helper()
	return RunPipelineTestWithContext(context.Background(), t, opts)
}

// RunPipelineTestWithContext is RunPipelineTest with a caller-provided context.
func RunPipelineTestWithContext(ctx context.Context, t *testing.T, opts RunOptions) *HarnessResult {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", ".tmp-integration-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	// The relative file paths naturally create each library's subtree.
	for name, content := range opts.Files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	libraries := make([]library.Library, 0, len(opts.Libraries))
	for _, name := range opts.Libraries {
		libraries = append(libraries, library.Library{Name: name, Root: filepath.Join(tmpDir, name)})
	}

	searchPaths := opts.SearchPaths
	if len(searchPaths) == 0 {
		searchPaths = []string{"modules"}
	}

	appConfig, err := app.NewConfig(app.Config{
		EntryModule: opts.EntryModule,
		Libraries:   libraries,
		SearchPaths: searchPaths,
		Bindings:    opts.Bindings,
		LogFormat:   "text",
		LogLevel:    "debug",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}

	testApp, err := app.NewApp(logBuffer, appConfig, opts.Modules...)
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}

	runErr := testApp.Run(ctx)
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
