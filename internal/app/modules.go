package app

import (
	"io"

	"github.com/vk/pipelibgo/internal/handlers"
	"github.com/vk/pipelibgo/modules/env_vars"
	"github.com/vk/pipelibgo/modules/http_request"
	"github.com/vk/pipelibgo/modules/print"
)

// coreModules is the builtin runner set registered when the caller does
// not supply its own.
func coreModules(outW io.Writer) []handlers.Module {
	return []handlers.Module{
		&print.Module{Out: outW},
		&env_vars.Module{},
		&http_request.Module{},
	}
}
