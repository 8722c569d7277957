// Command csa imports GTFS feeds into timetable datasets and answers journey queries
// against them from the command line.
package main

import (
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/urfave/cli/v2"

	"journeyplanner.org/internal/logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "csa",
		Usage: "connection scan journey planner",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "log debug records", EnvVars: []string{"CSA_VERBOSE"}},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(logging.New(c.App.ErrWriter, c.Bool("verbose")))
			return nil
		},
		Commands: []*cli.Command{
			importCommand(),
			journeysCommand(),
			stationsCommand(),
		},
	}
}
