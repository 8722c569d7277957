// Package webui serves debugging pages for the loaded timetable.
package webui

import (
	"net/http"

	"journeyplanner.org/internal/app"
)

type WebUI struct {
	*app.Application
}

// SetWebUIRoutes registers the debug pages on mux.
func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug/", webUI.debugIndexHandler)
}
