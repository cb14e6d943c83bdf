package app

import (
	"github.com/weftworks/weft/internal/registry"
	"github.com/weftworks/weft/modules/env_vars"
	"github.com/weftworks/weft/modules/http_request"
	"github.com/weftworks/weft/modules/print"
	"github.com/weftworks/weft/modules/socketio"
)

// coreModules is the definitive list of all modules that are compiled into
// the weft binary.
var coreModules = []registry.Module{
	&env_vars.Module{},
	&http_request.Module{},
	&print.Module{},
	&socketio.Module{},
}
