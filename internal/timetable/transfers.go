package timetable

import (
	"fmt"

	"journeyplanner.org/internal/flatbuf"
	"journeyplanner.org/internal/packing"
)

// TransferLayout is the record layout of walking transfers.
var TransferLayout = flatbuf.MustStructure(
	flatbuf.F(0, flatbuf.U16), // departure station
	flatbuf.F(1, flatbuf.U16), // arrival station
	flatbuf.F(2, flatbuf.U8),  // minutes
)

const (
	transferDepStation = iota
	transferArrStation
	transferMinutes
)

// Transfers is the table of directed walking links between stations, grouped by
// arrival station.
type Transfers struct {
	buf      *flatbuf.Buffer
	arriving []packing.Range
}

// NewTransfers reads transfer records, which must be sorted by arrival station, and
// indexes the slice of transfers arriving at each station.
func NewTransfers(data []byte) (*Transfers, error) {
	buf, err := flatbuf.NewBuffer(TransferLayout, data)
	if err != nil {
		return nil, fmt.Errorf("transfers: %w", err)
	}

	var arriving []packing.Range
	start := 0
	for i := 0; i <= buf.Size(); i++ {
		if i < buf.Size() && buf.U16(transferArrStation, i) == buf.U16(transferArrStation, start) {
			continue
		}
		if i == start {
			continue
		}
		station := buf.U16(transferArrStation, start)
		if station < len(arriving) {
			return nil, fmt.Errorf("transfers arriving at station %d are not contiguous", station)
		}
		for len(arriving) < station {
			arriving = append(arriving, packing.Range(uint32(start)<<8))
		}
		r, err := packing.NewRange(start, i)
		if err != nil {
			return nil, fmt.Errorf("transfers arriving at station %d: %w", station, err)
		}
		arriving = append(arriving, r)
		start = i
	}
	return &Transfers{buf: buf, arriving: arriving}, nil
}

func (t *Transfers) Size() int { return t.buf.Size() }

func (t *Transfers) DepStationID(id int) int { return t.buf.U16(transferDepStation, id) }

func (t *Transfers) ArrStationID(id int) int { return t.buf.U16(transferArrStation, id) }

func (t *Transfers) Minutes(id int) int { return t.buf.U8(transferMinutes, id) }

// ArrivingAt returns the range of transfer ids whose arrival station is stationID.
func (t *Transfers) ArrivingAt(stationID int) packing.Range {
	if stationID < len(t.arriving) {
		return t.arriving[stationID]
	}
	return 0
}

// MinutesBetween returns the walking time from depStationID to arrStationID, or
// ErrNotFound when the timetable has no such transfer.
func (t *Transfers) MinutesBetween(depStationID, arrStationID int) (int, error) {
	r := t.ArrivingAt(arrStationID)
	for id := r.Start(); id < r.End(); id++ {
		if t.DepStationID(id) == depStationID {
			return t.Minutes(id), nil
		}
	}
	return 0, fmt.Errorf("transfer from station %d to station %d: %w", depStationID, arrStationID, ErrNotFound)
}
