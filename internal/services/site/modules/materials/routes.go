package materials

import (
	"net/http"

	"github.com/ffonons/site/internal/services/site/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{identifier}", h.handleMaterial)
	mux.HandleFunc(routepath.Root, h.handleNotFound)
}
