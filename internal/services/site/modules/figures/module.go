// Package figures serves single figures by exact artifact key.
package figures

import (
	"net/http"

	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/routepath"
)

// Module provides single-figure routes.
type Module struct{}

// New returns a figures module.
func New() Module { return Module{} }

// ID returns a stable module identifier.
func (Module) ID() string { return "figures" }

// Mount wires figure route handlers.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	h := handlers{deps: deps}
	mux.HandleFunc(http.MethodGet+" "+routepath.FiguresPrefix+"{key}", h.handleFigure)
	mux.HandleFunc(http.MethodGet+" "+routepath.FiguresPrefix+"{key}/raw", h.handleRaw)
	return module.Mount{Prefix: routepath.FiguresPrefix, Handler: mux}, nil
}
