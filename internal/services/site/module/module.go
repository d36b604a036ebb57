// Package module defines the contract between the site composer and its
// feature modules.
package module

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	"github.com/ffonons/site/internal/services/site/storage"
)

// Dependencies carries shared runtime inputs for modules.
type Dependencies struct {
	// Catalog yields the current artifact catalog. It may change between
	// requests when preview reload is enabled.
	Catalog *catalog.Source
	// Summaries is optional; pages omit summary tables without it.
	Summaries storage.SummaryStore
	Labels    catalog.Labels
	// MetricsTable is pre-rendered HTML shown verbatim on the catalog page.
	MetricsTable string
	// ClientScript declares that pages run with client-side script, which
	// gates the catalog list.
	ClientScript bool
	// LiveReload adds the reload poller to pages.
	LiveReload bool
	Logger     *zap.Logger
}

// CurrentCatalog returns the active catalog, or nil when none is configured.
func (d Dependencies) CurrentCatalog() *catalog.Catalog {
	return d.Catalog.Catalog()
}

// Log returns the configured logger or a no-op logger.
func (d Dependencies) Log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Mount describes one module's route prefix and handler.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module is one mountable feature area.
type Module interface {
	ID() string
	Mount(Dependencies) (Mount, error)
}
