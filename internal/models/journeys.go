package models

// StopModel is a station, or a platform of a station.
type StopModel struct {
	Name     string  `json:"name"`
	Platform string  `json:"platform,omitempty"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// IntermediateStopModel is a call of a vehicle between the boarding and alighting stops.
// Times are Unix milliseconds.
type IntermediateStopModel struct {
	Stop          StopModel `json:"stop"`
	ArrivalTime   int64     `json:"arrivalTime"`
	DepartureTime int64     `json:"departureTime"`
}

// Leg types.
const (
	LegTransport = "transport"
	LegFoot      = "foot"
)

// LegModel is one leg of a journey. Transport legs carry the route fields; foot legs
// set Transfer when they stay within one station.
type LegModel struct {
	Type              string                  `json:"type"`
	From              StopModel               `json:"from"`
	To                StopModel               `json:"to"`
	DepartureTime     int64                   `json:"departureTime"`
	ArrivalTime       int64                   `json:"arrivalTime"`
	Route             string                  `json:"route,omitempty"`
	Vehicle           string                  `json:"vehicle,omitempty"`
	Destination       string                  `json:"destination,omitempty"`
	IntermediateStops []IntermediateStopModel `json:"intermediateStops,omitempty"`
	Transfer          bool                    `json:"transfer,omitempty"`
	Polyline          string                  `json:"polyline"`
}

type JourneyModel struct {
	DepartureTime   int64      `json:"departureTime"`
	ArrivalTime     int64      `json:"arrivalTime"`
	DurationSeconds int64      `json:"durationSeconds"`
	Changes         int        `json:"changes"`
	Legs            []LegModel `json:"legs"`
}

// JourneysModel answers a journey query between two stations on one service day.
type JourneysModel struct {
	From        StationModel   `json:"from"`
	To          StationModel   `json:"to"`
	ServiceDate string         `json:"serviceDate"`
	Journeys    []JourneyModel `json:"journeys"`
}

type StationModel struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Distance *float64 `json:"distance,omitempty"`
}
