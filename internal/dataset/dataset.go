// Package dataset builds flat binary timetables from GTFS static feeds.
package dataset

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/OneBusAway/go-gtfs"
	"github.com/go-playground/validator/v10"

	"journeyplanner.org/internal/criteria"
	"journeyplanner.org/internal/timetable"
)

const (
	DefaultChangeMinutes       = 2
	DefaultWalkRadiusMeters    = 400.0
	DefaultWalkMetersPerMinute = 75.0

	maxTransferMinutes  = 255
	maxTransfersPerStop = 255
	maxTripsPerDay      = 1 << 24
)

// Options controls how a feed is turned into a dataset.
type Options struct {
	// From and To bound the served dates, both included.
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
	// Name and Timezone default to those of the first agency.
	Name     string
	Timezone string `validate:"omitempty,timezone"`
	Source   string
	// ChangeMinutes is the change time within a station.
	ChangeMinutes int `validate:"gte=0,lte=255"`
	// Stations closer than WalkRadiusMeters are linked by a walking transfer. Zero
	// disables walking links.
	WalkRadiusMeters    float64 `validate:"gte=0"`
	WalkMetersPerMinute float64 `validate:"gt=0"`
	Logger              *slog.Logger
}

// DefaultOptions serves the given dates with default change and walking parameters.
func DefaultOptions(from, to time.Time) Options {
	return Options{
		From:                from,
		To:                  to,
		ChangeMinutes:       DefaultChangeMinutes,
		WalkRadiusMeters:    DefaultWalkRadiusMeters,
		WalkMetersPerMinute: DefaultWalkMetersPerMinute,
	}
}

var validate = validator.New()

func (o *Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid import options: %w", err)
	}
	return nil
}

// Dates returns every served date, in order, as midnight UTC.
func (o *Options) Dates() []time.Time {
	var dates []time.Time
	from := civilDate(o.From)
	to := civilDate(o.To)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Build converts a parsed feed into timetable data and its manifest.
func Build(static *gtfs.Static, opts Options) (*timetable.Data, *timetable.Manifest, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With(slog.String("component", "dataset"))
	}

	b := &builder{
		data:   &timetable.Data{Days: make(map[string]timetable.DayData)},
		stops:  make(map[string]int),
		routes: make(map[string]int),
		logger: logger,
	}
	b.addStops(static.Stops)
	b.addRoutes(static.Routes)
	b.addTransfers(static.Transfers, opts)

	manifest := &timetable.Manifest{
		Name:     opts.Name,
		Timezone: opts.Timezone,
		BuiltAt:  time.Now().UTC().Truncate(time.Second),
		Source:   opts.Source,
	}
	if len(static.Agencies) > 0 {
		if manifest.Name == "" {
			manifest.Name = static.Agencies[0].Name
		}
		if manifest.Timezone == "" {
			manifest.Timezone = static.Agencies[0].Timezone
		}
	}
	if manifest.Timezone == "" {
		manifest.Timezone = "UTC"
	}

	for _, date := range opts.Dates() {
		day, err := b.buildDay(static.Trips, date)
		if err != nil {
			return nil, nil, fmt.Errorf("service day %s: %w", timetable.DayKey(date), err)
		}
		key := timetable.DayKey(date)
		b.data.Days[key] = day
		manifest.Dates = append(manifest.Dates, key)
		logger.Debug("built service day",
			slog.String("date", key),
			slog.Int("trips", len(day.Trips)),
			slog.Int("connections", len(day.Connections)))
	}

	if err := manifest.Validate(); err != nil {
		return nil, nil, err
	}
	return b.data, manifest, nil
}

type builder struct {
	data   *timetable.Data
	stops  map[string]int
	routes map[string]int
	logger *slog.Logger
}

// GTFS location types that are neither stations nor boarding points.
const (
	locationEntrance     = 2
	locationGenericNode  = 3
	locationBoardingArea = 4
)

func (b *builder) addStops(stops []gtfs.Stop) {
	var platforms []gtfs.Stop
	for _, s := range stops {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		switch int(s.Type) {
		case locationEntrance, locationGenericNode, locationBoardingArea:
			continue
		}
		if s.Parent != nil {
			platforms = append(platforms, s)
			continue
		}
		b.stops[s.Id] = len(b.data.Stations)
		b.data.Stations = append(b.data.Stations, timetable.StationData{
			Name:      s.Name,
			Latitude:  *s.Latitude,
			Longitude: *s.Longitude,
		})
	}

	aliases := make(map[timetable.AliasData]bool)
	for _, p := range platforms {
		stationID, ok := b.stops[p.Parent.Id]
		if !ok {
			b.logger.Warn("skipping platform of unknown station",
				slog.String("stop_id", p.Id), slog.String("parent_id", p.Parent.Id))
			continue
		}
		station := b.data.Stations[stationID].Name
		label := p.PlatformCode
		if label == "" && p.Name != station {
			label = p.Name
		}
		b.stops[p.Id] = len(b.data.Stations) + len(b.data.Platforms)
		b.data.Platforms = append(b.data.Platforms, timetable.PlatformData{Name: label, StationID: stationID})

		alias := timetable.AliasData{Alias: p.Name, StationName: station}
		if p.Name != "" && p.Name != station && !aliases[alias] {
			aliases[alias] = true
			b.data.Aliases = append(b.data.Aliases, alias)
		}
	}
}

func (b *builder) addRoutes(routes []gtfs.Route) {
	for _, r := range routes {
		name := r.ShortName
		if name == "" {
			name = r.LongName
		}
		b.routes[r.Id] = len(b.data.Routes)
		b.data.Routes = append(b.data.Routes, timetable.RouteData{Name: name, Vehicle: vehicleFor(int(r.Type))})
	}
}

// vehicleFor maps basic and extended GTFS route types to vehicle kinds.
func vehicleFor(routeType int) timetable.Vehicle {
	switch {
	case routeType == 0, routeType >= 900 && routeType < 1000:
		return timetable.Tram
	case routeType == 1, routeType >= 400 && routeType < 500:
		return timetable.Metro
	case routeType == 2, routeType == 12, routeType >= 100 && routeType < 200:
		return timetable.Train
	case routeType == 4, routeType >= 1000 && routeType < 1300:
		return timetable.Ferry
	case routeType == 5, routeType == 6, routeType >= 1300 && routeType < 1400:
		return timetable.AerialLift
	case routeType == 7, routeType >= 1400 && routeType < 1500:
		return timetable.Funicular
	default:
		return timetable.Bus
	}
}

func (b *builder) buildDay(trips []gtfs.ScheduledTrip, date time.Time) (timetable.DayData, error) {
	var day timetable.DayData
	for i := range trips {
		trip := &trips[i]
		if trip.Service == nil || !serviceActive(trip.Service, date) {
			continue
		}
		if trip.Route == nil {
			return day, fmt.Errorf("trip %s has no route", trip.ID)
		}
		routeID, ok := b.routes[trip.Route.Id]
		if !ok {
			return day, fmt.Errorf("trip %s: unknown route %s", trip.ID, trip.Route.Id)
		}

		calls := make([]gtfs.ScheduledStopTime, 0, len(trip.StopTimes))
		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			if _, ok := b.stops[st.Stop.Id]; ok {
				calls = append(calls, st)
			}
		}
		if len(calls) < 2 {
			continue
		}
		sort.SliceStable(calls, func(i, j int) bool { return calls[i].StopSequence < calls[j].StopSequence })

		tripID := len(day.Trips)
		if tripID >= maxTripsPerDay {
			return day, fmt.Errorf("more than %d trips", maxTripsPerDay)
		}
		conns, err := b.connections(trip.ID, tripID, calls)
		if err != nil {
			return day, err
		}
		destination := trip.Headsign
		if destination == "" {
			last := calls[len(calls)-1].Stop.Id
			destination = b.stationName(b.stops[last])
		}
		day.Trips = append(day.Trips, timetable.TripData{RouteID: routeID, Destination: destination})
		day.Connections = append(day.Connections, conns...)
	}
	return day, nil
}

func (b *builder) connections(gtfsID string, tripID int, calls []gtfs.ScheduledStopTime) ([]timetable.ConnectionData, error) {
	if len(calls)-1 > timetable.MaxTripLength {
		return nil, fmt.Errorf("trip %s has %d connections, at most %d are supported",
			gtfsID, len(calls)-1, timetable.MaxTripLength)
	}
	conns := make([]timetable.ConnectionData, 0, len(calls)-1)
	for i := 0; i+1 < len(calls); i++ {
		dep := minutes(calls[i].DepartureTime)
		arr := minutes(calls[i+1].ArrivalTime)
		if dep < 0 || arr >= criteria.MaxMins {
			return nil, fmt.Errorf("trip %s: times %d..%d outside [0, %d) minutes", gtfsID, dep, arr, criteria.MaxMins)
		}
		if arr < dep {
			return nil, fmt.Errorf("trip %s: arrives at %s before leaving %s", gtfsID, calls[i+1].Stop.Id, calls[i].Stop.Id)
		}
		if i > 0 && dep < conns[i-1].ArrMins {
			return nil, fmt.Errorf("trip %s: leaves %s before arriving there", gtfsID, calls[i].Stop.Id)
		}
		conns = append(conns, timetable.ConnectionData{
			DepStopID: b.stops[calls[i].Stop.Id],
			DepMins:   dep,
			ArrStopID: b.stops[calls[i+1].Stop.Id],
			ArrMins:   arr,
			TripID:    tripID,
			TripPos:   i,
		})
	}
	return conns, nil
}

func (b *builder) stationName(stopID int) string {
	if stopID < len(b.data.Stations) {
		return b.data.Stations[stopID].Name
	}
	return b.data.Stations[b.data.Platforms[stopID-len(b.data.Stations)].StationID].Name
}

func (b *builder) stationOf(stopID int) int {
	if stopID < len(b.data.Stations) {
		return stopID
	}
	return b.data.Platforms[stopID-len(b.data.Stations)].StationID
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}
