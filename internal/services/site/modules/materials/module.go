// Package materials serves the catalog page and the per-identifier pages.
package materials

import (
	"net/http"

	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/routepath"
)

// Module provides the catalog and material routes.
type Module struct{}

// New returns a materials module.
func New() Module { return Module{} }

// ID returns a stable module identifier.
func (Module) ID() string { return "materials" }

// Mount wires material route handlers at the site root.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(deps))
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}
