package restapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"journeyplanner.org/internal/logging"
	"journeyplanner.org/internal/models"
)

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err)
	api.sendError(w, r, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusUnauthorized, "permission denied")
}

// validationErrorResponse reports invalid query parameters, field by field.
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	setJSONResponseType(w)
	w.WriteHeader(http.StatusBadRequest)

	var parts []string
	for field, errs := range fieldErrors {
		parts = append(parts, field+": "+strings.Join(errs, ", "))
	}
	response := models.NewResponse(http.StatusBadRequest,
		map[string]interface{}{"fieldErrors": fieldErrors},
		"invalid request: "+strings.Join(parts, "; "),
		api.Clock)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode validation error", err)
	}
}
