// Package appconf holds the configuration of the journey planner server.
package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment converts a command-line or config value to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

const (
	DefaultPort             = 4000
	DefaultRateLimit        = 100
	DefaultProfileCacheSize = 64
	DefaultProfileCacheTTL  = 30 * time.Minute
)

// Config is the runtime configuration of the server.
type Config struct {
	Port      int
	Env       Environment
	ApiKeys   []string
	Verbose   bool
	RateLimit int // requests per second per API key
	// DataDir is the dataset directory written by `csa import`.
	DataDir string
	// Timezone overrides the timezone of the dataset manifest.
	Timezone         string
	ProfileCacheSize int
	ProfileCacheTTL  time.Duration
}

// JSONConfig is the on-disk form of Config.
type JSONConfig struct {
	Port             int      `json:"port" validate:"omitempty,min=0,max=65535"`
	Env              string   `json:"env" validate:"omitempty,oneof=development test production"`
	ApiKeys          []string `json:"api-keys" validate:"omitempty,dive,required"`
	Verbose          bool     `json:"verbose"`
	RateLimit        int      `json:"rate-limit" validate:"min=0"`
	DataDir          string   `json:"data-dir" validate:"required"`
	Timezone         string   `json:"timezone" validate:"omitempty,timezone"`
	ProfileCacheSize int      `json:"profile-cache-size" validate:"min=0"`
	ProfileCacheTTL  string   `json:"profile-cache-ttl"`
}

var validate = validator.New()

// LoadFromFile reads and validates a JSON configuration file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg JSONConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *JSONConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.ProfileCacheTTL != "" {
		if _, err := time.ParseDuration(c.ProfileCacheTTL); err != nil {
			return fmt.Errorf("invalid configuration: profile-cache-ttl: %w", err)
		}
	}
	return nil
}

// ToAppConfig fills defaults for unset fields.
func (c *JSONConfig) ToAppConfig() Config {
	cfg := Config{
		Port:             c.Port,
		Env:              EnvFlagToEnvironment(c.Env),
		ApiKeys:          c.ApiKeys,
		Verbose:          c.Verbose,
		RateLimit:        c.RateLimit,
		DataDir:          c.DataDir,
		Timezone:         c.Timezone,
		ProfileCacheSize: c.ProfileCacheSize,
		ProfileCacheTTL:  DefaultProfileCacheTTL,
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.ProfileCacheSize == 0 {
		cfg.ProfileCacheSize = DefaultProfileCacheSize
	}
	if d, err := time.ParseDuration(c.ProfileCacheTTL); err == nil {
		cfg.ProfileCacheTTL = d
	}
	if cfg.ApiKeys == nil {
		cfg.ApiKeys = []string{}
	}
	return cfg
}
