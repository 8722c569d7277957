package webui

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"

	"journeyplanner.org/internal/appconf"
	"journeyplanner.org/internal/timetable"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

type debugData struct {
	Title string
	Pre   string
}

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")
	err := debugTemplate.Execute(w, debugData{Title: title, Pre: dumper.Sdump(data)})
	if err != nil {
		slog.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type stationRow struct {
	ID       int
	Name     string
	Lat, Lon float64
}

type aliasRow struct {
	Alias   string
	Station string
}

type platformRow struct {
	ID        int
	StationID int
	Name      string
}

type routeRow struct {
	ID      int
	Name    string
	Vehicle string
}

type transferRow struct {
	From, To int
	Minutes  int
}

type frontRow struct {
	StationID int
	Station   string
	Front     string
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}
	if webUI.Timetable == nil {
		http.Error(w, "timetable not loaded", http.StatusServiceUnavailable)
		return
	}

	var data interface{}
	var title string
	tt := webUI.Timetable

	switch r.URL.Query().Get("dataType") {
	case "manifest":
		data = webUI.Manifest
		title = "Dataset manifest"
	case "stations":
		s := tt.Stations()
		rows := make([]stationRow, s.Size())
		for i := range rows {
			rows[i] = stationRow{ID: i, Name: s.Name(i), Lat: s.Latitude(i), Lon: s.Longitude(i)}
		}
		data = rows
		title = "Stations"
	case "aliases":
		a := tt.StationAliases()
		rows := make([]aliasRow, a.Size())
		for i := range rows {
			rows[i] = aliasRow{Alias: a.Alias(i), Station: a.StationName(i)}
		}
		data = rows
		title = "Station aliases"
	case "platforms":
		p := tt.Platforms()
		offset := tt.Stations().Size()
		rows := make([]platformRow, p.Size())
		for i := range rows {
			rows[i] = platformRow{ID: offset + i, StationID: p.StationID(i), Name: p.Name(i)}
		}
		data = rows
		title = "Platforms"
	case "routes":
		routes := tt.Routes()
		rows := make([]routeRow, routes.Size())
		for i := range rows {
			rows[i] = routeRow{ID: i, Name: routes.Name(i), Vehicle: routes.Vehicle(i).String()}
		}
		data = rows
		title = "Routes"
	case "transfers":
		tr := tt.Transfers()
		rows := make([]transferRow, tr.Size())
		for i := range rows {
			rows[i] = transferRow{From: tr.DepStationID(i), To: tr.ArrStationID(i), Minutes: tr.Minutes(i)}
		}
		data = rows
		title = "Transfers"
	case "profile":
		rows, err := webUI.profileRows(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data = rows
		title = "Profile towards station " + r.URL.Query().Get("station")
	default:
		data = map[string]string{
			"error": "Please use one of the following: manifest, stations, aliases, platforms, routes, transfers, profile (with station and optional date).",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}

// profileRows lists the non-empty station frontiers of the profile towards the station
// query parameter.
func (webUI *WebUI) profileRows(r *http.Request) ([]frontRow, error) {
	q := r.URL.Query()
	station, err := strconv.Atoi(q.Get("station"))
	if err != nil || !timetable.IsStationID(webUI.Timetable, station) {
		return nil, errors.New("station must be a station id")
	}
	date, err := webUI.ParseServiceDate(q.Get("date"))
	if err != nil {
		return nil, fmt.Errorf("date must be formatted as %s", time.DateOnly)
	}
	p, err := webUI.Profiles.Get(r.Context(), date, station)
	if err != nil {
		return nil, err
	}

	stations := webUI.Timetable.Stations()
	var rows []frontRow
	for id := 0; id < stations.Size(); id++ {
		front := p.ForStation(id)
		if front.IsEmpty() {
			continue
		}
		rows = append(rows, frontRow{StationID: id, Station: stations.Name(id), Front: front.String()})
	}
	return rows, nil
}
