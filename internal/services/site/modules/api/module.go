// Package api serves the catalog as JSON.
package api

import (
	"net/http"

	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/routepath"
)

// Module provides JSON routes.
type Module struct{}

// New returns an api module.
func New() Module { return Module{} }

// ID returns a stable module identifier.
func (Module) ID() string { return "api" }

// Mount wires JSON route handlers.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	h := handlers{deps: deps}
	mux.HandleFunc(http.MethodGet+" "+routepath.APICatalog, h.handleCatalog)
	mux.HandleFunc(http.MethodGet+" "+routepath.APIVersion, h.handleVersion)
	return module.Mount{Prefix: routepath.APIPrefix, Handler: mux}, nil
}
