package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OneBusAway/go-gtfs"

	"journeyplanner.org/internal/logging"
	"journeyplanner.org/internal/timetable"
)

// Parse parses a GTFS static zip archive.
func Parse(archive []byte) (*gtfs.Static, error) {
	static, err := gtfs.ParseStatic(archive, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("parsing GTFS feed: %w", err)
	}
	return static, nil
}

// Import builds a dataset directory from the GTFS zip at gtfsPath and returns its manifest.
func Import(gtfsPath, outDir string, opts Options) (*timetable.Manifest, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With(slog.String("component", "dataset"))
		opts.Logger = logger
	}
	if opts.Source == "" {
		opts.Source = filepath.Base(gtfsPath)
	}

	archive, err := os.ReadFile(gtfsPath)
	if err != nil {
		return nil, fmt.Errorf("reading GTFS feed: %w", err)
	}
	static, err := Parse(archive)
	if err != nil {
		return nil, err
	}
	logging.LogOperation(logger, "gtfs_feed_parsed",
		slog.String("source", opts.Source),
		slog.Int("stops", len(static.Stops)),
		slog.Int("routes", len(static.Routes)),
		slog.Int("trips", len(static.Trips)),
		slog.Int("warnings", len(static.Warnings)))

	return Write(static, outDir, opts)
}

// Write builds the dataset of a parsed feed and writes it under outDir.
func Write(static *gtfs.Static, outDir string, opts Options) (*timetable.Manifest, error) {
	data, manifest, err := Build(static, opts)
	if err != nil {
		return nil, err
	}
	enc, err := data.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}
	if err := enc.WriteDir(outDir); err != nil {
		return nil, fmt.Errorf("writing dataset: %w", err)
	}
	if err := timetable.WriteManifest(filepath.Join(outDir, timetable.ManifestFile), manifest); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logging.LogOperation(logger, "dataset_written",
		slog.String("dir", outDir),
		slog.Int("stations", len(data.Stations)),
		slog.Int("platforms", len(data.Platforms)),
		slog.Int("transfers", len(data.Transfers)),
		slog.Int("days", len(manifest.Dates)))
	return manifest, nil
}
