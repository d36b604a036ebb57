// Package pagerender centralizes module page rendering behavior.
package pagerender

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/platform/httpx"
	sitetemplates "github.com/ffonons/site/internal/services/site/templates"
)

// ModulePage describes one full-page module response.
type ModulePage struct {
	Title      string
	StatusCode int
	Fragment   templ.Component
}

type emptyComponent struct{}

func (emptyComponent) Render(context.Context, io.Writer) error {
	return nil
}

// WriteModulePage renders page inside the site layout.
func WriteModulePage(w http.ResponseWriter, r *http.Request, deps module.Dependencies, page ModulePage) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	fragment := page.Fragment
	if fragment == nil {
		fragment = emptyComponent{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	layout := sitetemplates.Layout(LayoutOptions(deps, page.Title))
	return layout.Render(templ.WithChildren(httpx.RequestContext(r), fragment), w)
}

// LayoutOptions derives shell options from module dependencies.
func LayoutOptions(deps module.Dependencies, title string) sitetemplates.LayoutOptions {
	return sitetemplates.LayoutOptions{
		Title:        title,
		ClientScript: deps.ClientScript,
		LiveReload:   deps.ClientScript && deps.LiveReload,
	}
}
