package restapi

import (
	"encoding/json"
	"net/http"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// healthHandler reports 503 until a timetable is loaded.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	setJSONResponseType(w)

	if api.Application == nil || api.Timetable == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "unavailable", Detail: "timetable not loaded"})
		return
	}

	resp := HealthResponse{Status: "ok"}
	if api.Manifest != nil {
		resp.Detail = api.Manifest.Name
		if !api.Manifest.Serves(api.ServiceDate()) {
			resp.Status = "degraded"
			resp.Detail = "dataset does not serve today's date"
		}
	}
	_ = json.NewEncoder(w).Encode(resp)
}
