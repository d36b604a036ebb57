// Package weberror renders error pages for site modules.
package weberror

import (
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	module "github.com/ffonons/site/internal/services/site/module"
	siteerrors "github.com/ffonons/site/internal/services/site/platform/errors"
	"github.com/ffonons/site/internal/services/site/platform/httpx"
	"github.com/ffonons/site/internal/services/site/platform/pagerender"
	sitetemplates "github.com/ffonons/site/internal/services/site/templates"
)

// WriteError maps err to a status and renders the error page. Server errors
// are logged with their cause; visitors only see the status text.
func WriteError(w http.ResponseWriter, r *http.Request, err error, deps module.Dependencies) {
	statusCode := siteerrors.HTTPStatus(err)
	if statusCode >= http.StatusInternalServerError {
		fields := []zap.Field{zap.Error(err), zap.String("code", siteerrors.Code(err))}
		if r != nil {
			fields = append(fields, zap.String("path", r.URL.Path), zap.String("request_id", r.Header.Get(httpx.RequestIDHeader)))
		}
		deps.Log().Error("request failed", fields...)
	}
	writePage(w, r, statusCode, siteerrors.PublicMessage(err), deps)
}

// WriteAppError renders the error page for a bare status.
func WriteAppError(w http.ResponseWriter, r *http.Request, statusCode int, deps module.Dependencies) {
	writePage(w, r, statusCode, "", deps)
}

func writePage(w http.ResponseWriter, r *http.Request, statusCode int, message string, deps module.Dependencies) {
	if w == nil {
		return
	}
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	layout := sitetemplates.Layout(pagerender.LayoutOptions(deps, sitetemplates.ErrorPageTitle(statusCode)))
	fragment := sitetemplates.ErrorState(statusCode, message)
	if err := layout.Render(templ.WithChildren(httpx.RequestContext(r), fragment), w); err != nil {
		deps.Log().Warn("render error page", zap.Error(err), zap.Int("status", statusCode))
	}
}
