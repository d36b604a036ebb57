package figures

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	"github.com/ffonons/site/internal/platform/timeouts"
	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/platform/figureview"
	"github.com/ffonons/site/internal/services/site/platform/httpx"
	"github.com/ffonons/site/internal/services/site/platform/pagerender"
	"github.com/ffonons/site/internal/services/site/platform/weberror"
	"github.com/ffonons/site/internal/services/site/routepath"
	sitetemplates "github.com/ffonons/site/internal/services/site/templates"
)

type handlers struct {
	deps module.Dependencies
}

func (h handlers) lookup(r *http.Request) (catalog.Figure, error) {
	ctx, cancel := context.WithTimeout(httpx.RequestContext(r), timeouts.ArtifactLoad)
	defer cancel()
	return h.deps.CurrentCatalog().Lookup(ctx, r.PathValue("key"))
}

func (h handlers) handleFigure(w http.ResponseWriter, r *http.Request) {
	figure, err := h.lookup(r)
	if err != nil {
		weberror.WriteError(w, r, err, h.deps)
		return
	}
	view := sitetemplates.FigurePageView{
		Identifier: figure.Identifier,
		Link:       routepath.Material(figure.Identifier),
		Figure:     figureview.Figure(h.deps.Labels, figure, false),
	}
	if err := pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:    figure.Key,
		Fragment: sitetemplates.FigurePage(view),
	}); err != nil {
		h.deps.Log().Warn("render page", zap.Error(err), zap.String("path", r.URL.Path))
	}
}

// handleRaw serves the artifact bytes with their media type.
func (h handlers) handleRaw(w http.ResponseWriter, r *http.Request) {
	figure, err := h.lookup(r)
	if err != nil {
		weberror.WriteError(w, r, err, h.deps)
		return
	}
	w.Header().Set("Content-Type", figure.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(figure.Body)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(figure.Body)
}
