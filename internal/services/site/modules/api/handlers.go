package api

import (
	"net/http"

	"go.uber.org/zap"

	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/platform/httpx"
	"github.com/ffonons/site/internal/services/site/routepath"
)

// CatalogResponse lists every material in catalog order.
type CatalogResponse struct {
	Prefix     string          `json:"prefix"`
	Generation uint64          `json:"generation"`
	Materials  []MaterialEntry `json:"materials"`
}

// MaterialEntry is one identifier with its page link.
type MaterialEntry struct {
	Identifier string `json:"identifier"`
	Link       string `json:"link"`
	Formula    string `json:"formula,omitempty"`
	Figures    int    `json:"figures"`
}

// VersionResponse reports the catalog generation for reload polling.
type VersionResponse struct {
	Generation uint64 `json:"generation"`
}

type handlers struct {
	deps module.Dependencies
}

func (h handlers) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := h.deps.CurrentCatalog()
	var formulas map[string]string
	if h.deps.Summaries != nil {
		var err error
		formulas, err = h.deps.Summaries.Formulas(httpx.RequestContext(r))
		if err != nil {
			h.deps.Log().Warn("load formulas", zap.Error(err))
		}
	}
	entries := c.Entries(routepath.Material)
	resp := CatalogResponse{
		Prefix:     c.Prefix(),
		Generation: h.deps.Catalog.Generation(),
		Materials:  make([]MaterialEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Materials = append(resp.Materials, MaterialEntry{
			Identifier: entry.Identifier,
			Link:       entry.Link,
			Formula:    formulas[entry.Identifier],
			Figures:    entry.Artifacts,
		})
	}
	h.write(w, resp)
}

func (h handlers) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	h.write(w, VersionResponse{Generation: h.deps.Catalog.Generation()})
}

func (h handlers) write(w http.ResponseWriter, payload any) {
	if err := httpx.WriteJSON(w, http.StatusOK, payload); err != nil {
		h.deps.Log().Warn("write json", zap.Error(err))
	}
}
