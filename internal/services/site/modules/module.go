// Package modules defines the site module registry.
package modules

import (
	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/modules/api"
	"github.com/ffonons/site/internal/services/site/modules/figures"
	"github.com/ffonons/site/internal/services/site/modules/materials"
)

// Module aliases the module interface contract.
type Module = module.Module

// DefaultModules returns the modules mounted by the site.
func DefaultModules() []Module {
	return []Module{
		figures.New(),
		api.New(),
		materials.New(),
	}
}
