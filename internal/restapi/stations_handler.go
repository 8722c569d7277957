package restapi

import (
	"net/http"
	"strings"

	"journeyplanner.org/internal/models"
)

const (
	defaultSearchRadius = 500.0
	maxSearchRadius     = 10000.0
	defaultMaxCount     = 20
	maxMaxCount         = 250
)

func (api *RestAPI) stationHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		api.validationErrorResponse(w, r, map[string][]string{"name": {"missing required field"}})
		return
	}
	id, err := api.resolveStation(name)
	if err != nil {
		api.sendNotFound(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(api.stationModel(id), api.Clock))
}

func (api *RestAPI) stationsForLocationHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := make(map[string][]string)
	lat := floatParam(r, "lat", -90, 90, fieldErrors)
	lon := floatParam(r, "lon", -180, 180, fieldErrors)
	radius := optionalFloatParam(r, "radius", defaultSearchRadius, 1, maxSearchRadius, fieldErrors)
	maxCount := optionalIntParam(r, "maxCount", defaultMaxCount, 1, maxMaxCount, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	matches := api.Stations.Nearby(lat, lon, radius, maxCount+1)
	limitExceeded := len(matches) > maxCount
	if limitExceeded {
		matches = matches[:maxCount]
	}

	list := make([]models.StationModel, 0, len(matches))
	for _, m := range matches {
		s := api.stationModel(m.StationID)
		d := m.Distance
		s.Distance = &d
		list = append(list, s)
	}
	api.sendResponse(w, r, models.NewListResponse(list, limitExceeded, api.Clock))
}
