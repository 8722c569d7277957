package restapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"journeyplanner.org/internal/timetable"
)

var errUnknownStation = errors.New("unknown station")

// resolveStation accepts a station id or an exact station name or alias.
func (api *RestAPI) resolveStation(ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		if timetable.IsStationID(api.Timetable, id) {
			return id, nil
		}
		return 0, fmt.Errorf("%w: id %d", errUnknownStation, id)
	}
	id, err := timetable.FindStation(api.Timetable, ref)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errUnknownStation, ref)
	}
	return id, nil
}

// floatParam parses a required float query parameter within [min, max].
func floatParam(r *http.Request, name string, min, max float64, fieldErrors map[string][]string) float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		fieldErrors[name] = append(fieldErrors[name], "missing required field")
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fieldErrors[name] = append(fieldErrors[name], "must be a number")
		return 0
	}
	if v < min || v > max {
		fieldErrors[name] = append(fieldErrors[name], fmt.Sprintf("must be between %g and %g", min, max))
	}
	return v
}

// optionalFloatParam is floatParam with a default for absent parameters.
func optionalFloatParam(r *http.Request, name string, def, min, max float64, fieldErrors map[string][]string) float64 {
	if strings.TrimSpace(r.URL.Query().Get(name)) == "" {
		return def
	}
	return floatParam(r, name, min, max, fieldErrors)
}

func optionalIntParam(r *http.Request, name string, def, min, max int, fieldErrors map[string][]string) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fieldErrors[name] = append(fieldErrors[name], "must be an integer")
		return def
	}
	if v < min || v > max {
		fieldErrors[name] = append(fieldErrors[name], fmt.Sprintf("must be between %d and %d", min, max))
	}
	return v
}
