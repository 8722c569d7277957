package restapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"journeyplanner.org/internal/journey"
	"journeyplanner.org/internal/models"
	"journeyplanner.org/internal/timetable"
)

func (api *RestAPI) journeysHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fieldErrors := make(map[string][]string)
	fromRef := strings.TrimSpace(q.Get("from"))
	toRef := strings.TrimSpace(q.Get("to"))
	if fromRef == "" {
		fieldErrors["from"] = []string{"missing required field"}
	}
	if toRef == "" {
		fieldErrors["to"] = []string{"missing required field"}
	}
	date, err := api.ParseServiceDate(strings.TrimSpace(q.Get("date")))
	if err != nil {
		fieldErrors["date"] = []string{"must be a date formatted as YYYY-MM-DD"}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	from, err := api.resolveStation(fromRef)
	if err != nil {
		api.sendError(w, r, http.StatusNotFound, err.Error())
		return
	}
	to, err := api.resolveStation(toRef)
	if err != nil {
		api.sendError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if api.Manifest != nil && !api.Manifest.Serves(date) {
		api.sendError(w, r, http.StatusNotFound, "service date not available: "+date.Format(time.DateOnly))
		return
	}

	p, err := api.Profiles.Get(r.Context(), date, to)
	if errors.Is(err, timetable.ErrDayNotAvailable) {
		api.sendError(w, r, http.StatusNotFound, "service date not available: "+date.Format(time.DateOnly))
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	journeys, err := journey.Journeys(p, from)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	entry := models.JourneysModel{
		From:        api.stationModel(from),
		To:          api.stationModel(to),
		ServiceDate: date.Format(time.DateOnly),
		Journeys:    make([]models.JourneyModel, 0, len(journeys)),
	}
	for _, j := range journeys {
		entry.Journeys = append(entry.Journeys, journeyModel(j))
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.Clock))
}

func (api *RestAPI) stationModel(id int) models.StationModel {
	s := api.Timetable.Stations()
	return models.StationModel{ID: id, Name: s.Name(id), Lat: s.Latitude(id), Lon: s.Longitude(id)}
}

func journeyModel(j journey.Journey) models.JourneyModel {
	legs := j.Legs()
	m := models.JourneyModel{
		DepartureTime:   j.DepTime().UnixMilli(),
		ArrivalTime:     j.ArrTime().UnixMilli(),
		DurationSeconds: int64(j.Duration() / time.Second),
		Changes:         j.Changes(),
		Legs:            make([]models.LegModel, 0, len(legs)),
	}
	for _, l := range legs {
		m.Legs = append(m.Legs, legModel(l))
	}
	return m
}

func legModel(l journey.Leg) models.LegModel {
	m := models.LegModel{
		From:          stopModel(l.DepStop()),
		To:            stopModel(l.ArrStop()),
		DepartureTime: l.DepTime().UnixMilli(),
		ArrivalTime:   l.ArrTime().UnixMilli(),
	}
	coords := [][]float64{{l.DepStop().Latitude, l.DepStop().Longitude}}
	switch leg := l.(type) {
	case journey.Transport:
		m.Type = models.LegTransport
		m.Route = leg.Route
		m.Vehicle = leg.Vehicle.String()
		m.Destination = leg.Destination
		for _, s := range leg.Intermediates {
			m.IntermediateStops = append(m.IntermediateStops, models.IntermediateStopModel{
				Stop:          stopModel(s.Stop),
				ArrivalTime:   s.ArrTime.UnixMilli(),
				DepartureTime: s.DepTime.UnixMilli(),
			})
			coords = append(coords, []float64{s.Stop.Latitude, s.Stop.Longitude})
		}
	case journey.Foot:
		m.Type = models.LegFoot
		m.Transfer = leg.IsTransfer()
	}
	coords = append(coords, []float64{l.ArrStop().Latitude, l.ArrStop().Longitude})
	m.Polyline = string(polyline.EncodeCoords(coords))
	return m
}

func stopModel(s journey.Stop) models.StopModel {
	return models.StopModel{Name: s.Name, Platform: s.PlatformName, Lat: s.Latitude, Lon: s.Longitude}
}
