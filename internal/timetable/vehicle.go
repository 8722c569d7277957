package timetable

import (
	"encoding/json"
	"fmt"
)

// Vehicle is the kind of vehicle serving a route.
type Vehicle uint8

const (
	Tram Vehicle = iota
	Metro
	Train
	Bus
	Ferry
	AerialLift
	Funicular
)

var vehicleNames = [...]string{"TRAM", "METRO", "TRAIN", "BUS", "FERRY", "AERIAL_LIFT", "FUNICULAR"}

// Vehicles lists every vehicle kind in encoding order.
var Vehicles = []Vehicle{Tram, Metro, Train, Bus, Ferry, AerialLift, Funicular}

func (v Vehicle) String() string {
	if int(v) < len(vehicleNames) {
		return vehicleNames[v]
	}
	return fmt.Sprintf("Vehicle(%d)", uint8(v))
}

func (v Vehicle) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// VehicleFromIndex converts an encoded vehicle kind.
func VehicleFromIndex(i int) (Vehicle, error) {
	if i < 0 || i >= len(vehicleNames) {
		return 0, fmt.Errorf("vehicle kind %d: %w", i, ErrNotFound)
	}
	return Vehicle(i), nil
}
