package timetable

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the dataset description file.
const ManifestFile = "dataset.yml"

// Manifest describes a dataset directory.
type Manifest struct {
	Name     string    `yaml:"name" validate:"required"`
	Timezone string    `yaml:"timezone" validate:"required,timezone"`
	Dates    []string  `yaml:"dates" validate:"required,min=1,dive,datetime=2006-01-02"`
	BuiltAt  time.Time `yaml:"built_at"`
	Source   string    `yaml:"source,omitempty"`
}

var validate = validator.New()

// Validate checks the manifest fields.
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}

// Location returns the timezone service days are expressed in.
func (m *Manifest) Location() (*time.Location, error) {
	return time.LoadLocation(m.Timezone)
}

// Serves reports whether the dataset has a partition for the given date.
func (m *Manifest) Serves(date time.Time) bool {
	key := DayKey(date)
	for _, d := range m.Dates {
		if d == key {
			return true
		}
	}
	return false
}

// ReadManifest reads and validates a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteManifest validates m and writes it to path.
func WriteManifest(path string, m *Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
