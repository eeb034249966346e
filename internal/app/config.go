package app

import (
	"errors"

	"github.com/vk/pipelibgo/internal/library"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// EntryModule is the logical path of the module the run starts from.
	EntryModule string

	// Libraries are the attached libraries in attachment order. The order
	// is fixed for the run and defines resolution precedence.
	Libraries []library.Library

	// SearchPaths are the relative directories consulted per library when
	// resolving a module path.
	SearchPaths []string

	// Bindings become the entry module's variable namespace.
	Bindings map[string]any

	LogFormat string
	LogLevel  string
}

// NewConfig validates the given configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.EntryModule == "" {
		return nil, errors.New("EntryModule is a required configuration field and cannot be empty")
	}
	if len(cfg.SearchPaths) == 0 {
		cfg.SearchPaths = []string{"modules"}
	}
	return &cfg, nil
}
