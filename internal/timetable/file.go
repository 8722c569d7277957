package timetable

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// File is a Timetable read from a dataset directory. Binary files are memory-mapped
// read-only; per-day partitions are mapped on first use and stay mapped until Close.
//
// A File is safe for concurrent use.
type File struct {
	*tables
	root     string
	manifest *Manifest
	logger   *slog.Logger

	mu       sync.Mutex
	days     map[string]*day
	mappings [][]byte
	closed   bool
}

var _ Timetable = (*File)(nil)

// Open maps the day-invariant files of the dataset at root. The manifest is optional.
func Open(root string) (*File, error) {
	f := &File{
		root:   root,
		days:   make(map[string]*day),
		logger: slog.Default().With(slog.String("component", "timetable")),
	}

	strings, err := LoadStrings(filepath.Join(root, StringsFile))
	if err != nil {
		return nil, err
	}

	names := []string{StationsFile, StationAliasesFile, PlatformsFile, RoutesFile, TransfersFile}
	data := make([][]byte, len(names))
	for i, name := range names {
		if data[i], err = f.mapFile(filepath.Join(root, name)); err != nil {
			f.Close()
			return nil, err
		}
	}
	if f.tables, err = newTables(strings, data[0], data[1], data[2], data[3], data[4]); err != nil {
		f.Close()
		return nil, err
	}

	m, err := ReadManifest(filepath.Join(root, ManifestFile))
	switch {
	case err == nil:
		f.manifest = m
	case errors.Is(err, fs.ErrNotExist):
	default:
		f.Close()
		return nil, err
	}

	f.logger.Info("timetable opened",
		slog.String("root", root),
		slog.Int("stations", f.stations.Size()),
		slog.Int("platforms", f.platforms.Size()),
		slog.Int("routes", f.routes.Size()),
		slog.Int("transfers", f.transfers.Size()))
	return f, nil
}

// Manifest returns the dataset manifest, or nil when the dataset has none.
func (f *File) Manifest() *Manifest {
	return f.manifest
}

func (f *File) TripsFor(date time.Time) (*Trips, error) {
	d, err := f.dayFor(date)
	if err != nil {
		return nil, err
	}
	return d.trips, nil
}

func (f *File) ConnectionsFor(date time.Time) (*Connections, error) {
	d, err := f.dayFor(date)
	if err != nil {
		return nil, err
	}
	return d.connections, nil
}

func (f *File) dayFor(date time.Time) (*day, error) {
	key := DayKey(date)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, dayNotAvailable(date, fs.ErrClosed)
	}
	if d, ok := f.days[key]; ok {
		return d, nil
	}

	dir := filepath.Join(f.root, key)
	names := []string{TripsFile, ConnectionsFile, ConnectionSuccessorsFile}
	data := make([][]byte, len(names))
	// Regions mapped for this day join f.mappings only once the whole day is valid.
	var mapped [][]byte
	for i, name := range names {
		var err error
		if data[i], err = mmapFile(filepath.Join(dir, name)); err != nil {
			unmapAll(mapped)
			return nil, dayNotAvailable(date, err)
		}
		if data[i] != nil {
			mapped = append(mapped, data[i])
		}
	}
	d, err := newDay(f.strings, data[0], data[1], data[2])
	if err != nil {
		unmapAll(mapped)
		return nil, fmt.Errorf("day %s: %w", key, err)
	}
	f.mappings = append(f.mappings, mapped...)
	f.days[key] = d
	f.logger.Debug("day partition mapped", slog.String("date", key), slog.Int("connections", d.connections.Size()))
	return d, nil
}

func (f *File) mapFile(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mapFileLocked(path)
}

func (f *File) mapFileLocked(path string) ([]byte, error) {
	data, err := mmapFile(path)
	if err != nil || data == nil {
		return nil, err
	}
	f.mappings = append(f.mappings, data)
	return data, nil
}

// mmapFile maps path read-only. Empty files yield a nil slice.
func mmapFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, nil
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return data, nil
}

func unmapAll(regions [][]byte) {
	for _, m := range regions {
		_ = unix.Munmap(m)
	}
}

// Close unmaps every file. Views obtained from f must not be used afterwards.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	var errs []error
	for _, m := range f.mappings {
		if err := unix.Munmap(m); err != nil {
			errs = append(errs, err)
		}
	}
	f.mappings = nil
	f.days = nil
	return errors.Join(errs...)
}
