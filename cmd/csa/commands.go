package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"journeyplanner.org/internal/clock"
	"journeyplanner.org/internal/dataset"
	"journeyplanner.org/internal/journey"
	"journeyplanner.org/internal/logging"
	"journeyplanner.org/internal/router"
	"journeyplanner.org/internal/stationindex"
	"journeyplanner.org/internal/timetable"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "build a dataset directory from a GTFS zip",
		ArgsUsage: "<feed.zip> <out-dir>",
		Flags: []cli.Flag{
			&cli.TimestampFlag{Name: "from", Layout: time.DateOnly, Required: true, Usage: "first served date"},
			&cli.TimestampFlag{Name: "to", Layout: time.DateOnly, Required: true, Usage: "last served date"},
			&cli.StringFlag{Name: "name", Usage: "dataset name, defaults to the first agency"},
			&cli.StringFlag{Name: "timezone", Usage: "dataset timezone, defaults to the first agency's"},
			&cli.IntFlag{Name: "change-minutes", Value: dataset.DefaultChangeMinutes, Usage: "change time within a station"},
			&cli.Float64Flag{Name: "walk-radius", Value: dataset.DefaultWalkRadiusMeters, Usage: "link stations closer than this many meters, 0 disables"},
			&cli.Float64Flag{Name: "walk-speed", Value: dataset.DefaultWalkMetersPerMinute, Usage: "walking speed in meters per minute"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("expected a feed and an output directory")
			}
			opts := dataset.DefaultOptions(*c.Timestamp("from"), *c.Timestamp("to"))
			opts.Name = c.String("name")
			opts.Timezone = c.String("timezone")
			opts.ChangeMinutes = c.Int("change-minutes")
			opts.WalkRadiusMeters = c.Float64("walk-radius")
			opts.WalkMetersPerMinute = c.Float64("walk-speed")

			m, err := dataset.Import(c.Args().Get(0), c.Args().Get(1), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.App.Writer, "%s: %d days (%s to %s)\n",
				m.Name, len(m.Dates), m.Dates[0], m.Dates[len(m.Dates)-1])
			return err
		},
	}
}

func dataDirFlag() cli.Flag {
	return &cli.StringFlag{Name: "data", Aliases: []string{"d"}, Required: true, Usage: "dataset directory"}
}

// openTimetable opens the dataset of the data flag and resolves the zone its service
// days are expressed in.
func openTimetable(c *cli.Context) (*timetable.File, *time.Location, error) {
	tt, err := timetable.Open(c.String("data"))
	if err != nil {
		return nil, nil, err
	}
	loc := time.UTC
	if m := tt.Manifest(); m != nil {
		if loc, err = m.Location(); err != nil {
			_ = tt.Close()
			return nil, nil, err
		}
	}
	return tt, loc, nil
}

func journeysCommand() *cli.Command {
	return &cli.Command{
		Name:      "journeys",
		Usage:     "list the Pareto-optimal journeys between two stations",
		ArgsUsage: "<from> <to>",
		Flags: []cli.Flag{
			dataDirFlag(),
			&cli.StringFlag{Name: "date", Usage: "service date (YYYY-MM-DD), defaults to today"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("expected an origin and a destination station")
			}
			tt, loc, err := openTimetable(c)
			if err != nil {
				return err
			}
			defer logging.SafeCloseWithLogging(tt, slog.Default(), "timetable")

			date := clock.ServiceDate(clock.RealClock{}, loc)
			if s := c.String("date"); s != "" {
				if date, err = time.ParseInLocation(time.DateOnly, s, loc); err != nil {
					return fmt.Errorf("invalid date: %w", err)
				}
			}
			from, err := timetable.FindStation(tt, c.Args().Get(0))
			if err != nil {
				return err
			}
			to, err := timetable.FindStation(tt, c.Args().Get(1))
			if err != nil {
				return err
			}

			p, err := router.New(tt).Profile(date, to)
			if err != nil {
				return err
			}
			journeys, err := journey.Journeys(p, from)
			if err != nil {
				return err
			}
			return printJourneys(c.App.Writer, journeys, loc)
		},
	}
}

func printJourneys(w io.Writer, journeys []journey.Journey, loc *time.Location) error {
	if len(journeys) == 0 {
		_, err := fmt.Fprintln(w, "no journeys found")
		return err
	}
	clockTime := func(t time.Time) string { return t.In(loc).Format("15:04") }

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, j := range journeys {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s -> %s\t%s\t%d change(s)\n",
			clockTime(j.DepTime()), clockTime(j.ArrTime()), j.Duration(), j.Changes())
		for _, l := range j.Legs() {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				clockTime(l.DepTime()), stopLabel(l.DepStop()),
				clockTime(l.ArrTime()), stopLabel(l.ArrStop()), legLabel(l))
		}
	}
	return tw.Flush()
}

func stopLabel(s journey.Stop) string {
	if s.PlatformName == "" {
		return s.Name
	}
	return s.Name + " [" + s.PlatformName + "]"
}

func legLabel(l journey.Leg) string {
	switch leg := l.(type) {
	case journey.Transport:
		return fmt.Sprintf("%s %s to %s", strings.ToLower(leg.Vehicle.String()), leg.Route, leg.Destination)
	case journey.Foot:
		if leg.IsTransfer() {
			return "change"
		}
		return "walk"
	}
	return ""
}

func stationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "list the stations around a location",
		Flags: []cli.Flag{
			dataDirFlag(),
			&cli.Float64Flag{Name: "lat", Required: true},
			&cli.Float64Flag{Name: "lon", Required: true},
			&cli.Float64Flag{Name: "radius", Value: 500, Usage: "search radius in meters"},
			&cli.IntFlag{Name: "max", Value: 20, Usage: "maximum number of stations"},
		},
		Action: func(c *cli.Context) error {
			tt, _, err := openTimetable(c)
			if err != nil {
				return err
			}
			defer logging.SafeCloseWithLogging(tt, slog.Default(), "timetable")

			idx := stationindex.New(tt)
			matches := idx.Nearby(c.Float64("lat"), c.Float64("lon"), c.Float64("radius"), c.Int("max"))
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, m := range matches {
				fmt.Fprintf(tw, "%d\t%s\t%.0f m\n", m.StationID, tt.Stations().Name(m.StationID), m.Distance)
			}
			return tw.Flush()
		},
	}
}
