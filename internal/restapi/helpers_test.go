package restapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"journeyplanner.org/internal/app"
	"journeyplanner.org/internal/appconf"
	"journeyplanner.org/internal/clock"
	"journeyplanner.org/internal/models"
	"journeyplanner.org/internal/timetable"
	"journeyplanner.org/internal/timetable/timetabletest"
)

const (
	stationA = iota
	stationB
	stationC
	stationD
)

// testTimetable has four stations a few hundred meters apart. A bus runs A-B-C, a tram
// B-C, a train A-D and C can be reached on foot from D.
func testTimetable(t *testing.T) timetable.Timetable {
	b := timetabletest.New()
	coords := [][2]float64{{46.50, 6.60}, {46.51, 6.61}, {46.52, 6.62}, {46.521, 6.621}}
	for i, name := range []string{"A", "B", "C", "D"} {
		s := b.Station(name, coords[i][0], coords[i][1])
		b.Walk(s, s, 2)
	}
	b.Walk(stationD, stationC, 4)
	b.Alias("Central", "C")

	bus := b.Route("1", timetable.Bus)
	tram := b.Route("2", timetable.Tram)
	train := b.Route("3", timetable.Train)
	b.Trip(timetabletest.Date, bus, "C",
		timetabletest.At(stationA, 480, 480),
		timetabletest.At(stationB, 490, 491),
		timetabletest.At(stationC, 500, 500))
	b.Trip(timetabletest.Date, tram, "C",
		timetabletest.At(stationB, 495, 495),
		timetabletest.At(stationC, 498, 498))
	b.Trip(timetabletest.Date, train, "D",
		timetabletest.At(stationA, 470, 470),
		timetabletest.At(stationD, 485, 485))
	return b.Build(t)
}

var testNow = timetabletest.Date.Add(7 * time.Hour)

func createTestApiWithConfig(t *testing.T, cfg appconf.Config) *RestAPI {
	t.Helper()
	application, err := app.New(cfg, testTimetable(t), nil, clock.NewMockClock(testNow), nil)
	require.NoError(t, err)
	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api
}

func testConfig() appconf.Config {
	return appconf.Config{
		Env:              appconf.Test,
		ApiKeys:          []string{"TEST"},
		RateLimit:        100,
		ProfileCacheSize: 8,
		ProfileCacheTTL:  time.Minute,
	}
}

func createTestApi(t *testing.T) *RestAPI {
	return createTestApiWithConfig(t, testConfig())
}

// serveAndRetrieveEndpoint runs one request through the routed API and decodes the
// response envelope.
func serveAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var model models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&model))
	return resp, model
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object")
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "data has no entry")
	return entry
}

func minutesToMillis(mins int) float64 {
	return float64(timetabletest.Date.Add(time.Duration(mins) * time.Minute).UnixMilli())
}
