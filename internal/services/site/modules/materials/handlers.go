package materials

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	"github.com/ffonons/site/internal/platform/timeouts"
	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/platform/figureview"
	"github.com/ffonons/site/internal/services/site/platform/httpx"
	"github.com/ffonons/site/internal/services/site/platform/pagerender"
	"github.com/ffonons/site/internal/services/site/platform/weberror"
	"github.com/ffonons/site/internal/services/site/routepath"
	"github.com/ffonons/site/internal/services/site/storage"
	sitetemplates "github.com/ffonons/site/internal/services/site/templates"
)

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	c := h.deps.CurrentCatalog()
	view := sitetemplates.CatalogView{
		Database:     h.deps.Labels.Database(c.Prefix()).Label,
		MetricsTable: h.deps.MetricsTable,
		ShowList:     h.deps.ClientScript,
	}
	if view.ShowList {
		view.Entries = catalogEntries(c.Entries(routepath.Material), h.formulas(ctx))
	}
	h.writePage(w, r, pagerender.ModulePage{
		Fragment: sitetemplates.CatalogPage(view),
	})
}

func (h handlers) handleMaterial(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(httpx.RequestContext(r), timeouts.ArtifactLoad)
	defer cancel()
	identifier := strings.TrimSpace(r.PathValue("identifier"))
	c := h.deps.CurrentCatalog()
	figures, err := c.Resolve(ctx, identifier)
	if err != nil {
		weberror.WriteError(w, r, err, h.deps)
		return
	}
	materialID := figures[0].Identifier
	view := sitetemplates.MaterialView{
		Identifier: materialID,
		Database:   h.deps.Labels.Database(c.Prefix()).Label,
		Figures:    figureview.Figures(h.deps.Labels, figures, true),
	}
	summaries := h.summaries(ctx, materialID)
	view.Summaries = summaryRows(h.deps.Labels, summaries)
	if len(summaries) > 0 {
		view.Formula = summaries[0].Formula
	}
	h.writePage(w, r, pagerender.ModulePage{
		Title:    materialID,
		Fragment: sitetemplates.MaterialPage(view),
	})
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	weberror.WriteAppError(w, r, http.StatusNotFound, h.deps)
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, page pagerender.ModulePage) {
	if err := pagerender.WriteModulePage(w, r, h.deps, page); err != nil {
		h.deps.Log().Warn("render page", zap.Error(err), zap.String("path", r.URL.Path))
	}
}

// formulas is best effort: the catalog renders without them.
func (h handlers) formulas(ctx context.Context) map[string]string {
	if h.deps.Summaries == nil {
		return nil
	}
	formulas, err := h.deps.Summaries.Formulas(ctx)
	if err != nil {
		h.deps.Log().Warn("load formulas", zap.Error(err))
		return nil
	}
	return formulas
}

func (h handlers) summaries(ctx context.Context, materialID string) []storage.MaterialSummary {
	if h.deps.Summaries == nil {
		return nil
	}
	summaries, err := h.deps.Summaries.ListByMaterial(ctx, materialID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.deps.Log().Warn("load summaries", zap.Error(err), zap.String("material_id", materialID))
		}
		return nil
	}
	return summaries
}

func catalogEntries(entries []catalog.Entry, formulas map[string]string) []sitetemplates.CatalogEntry {
	out := make([]sitetemplates.CatalogEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, sitetemplates.CatalogEntry{
			Identifier: entry.Identifier,
			Link:       entry.Link,
			Formula:    formulas[entry.Identifier],
			Figures:    entry.Artifacts,
		})
	}
	return out
}
