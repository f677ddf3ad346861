// Package webui serves the schedule debug page.
package webui

import (
	"net/http"

	"github.com/ia560/busplanner/internal/app"
)

type WebUI struct {
	*app.Application
}

// SetWebUIRoutes registers the debug page on mux.
func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug/", webUI.debugIndexHandler)
}
