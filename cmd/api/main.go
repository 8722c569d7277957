// Command api serves journey queries over a prepared timetable dataset.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"journeyplanner.org/internal/appconf"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	coreApp, err := BuildApplication(cfg)
	if err != nil {
		slog.Error("failed to build application", slog.Any("error", err))
		os.Exit(1)
	}

	srv, api := CreateServer(coreApp, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, srv, coreApp, api); err != nil {
		slog.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}

// parseConfig reads the configuration from a JSON file when -f is given, and from the
// remaining flags otherwise. The two sources cannot be mixed.
func parseConfig(args []string) (appconf.Config, error) {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	configFile := fs.String("f", "", "path to a JSON configuration file")
	port := fs.Int("port", appconf.DefaultPort, "API server port")
	env := fs.String("env", "development", "environment (development|test|production)")
	apiKeys := fs.String("api-keys", "test", "comma separated API keys")
	verbose := fs.Bool("verbose", false, "log debug records")
	rateLimit := fs.Int("rate-limit", appconf.DefaultRateLimit, "requests per second per API key")
	dataDir := fs.String("data-dir", "", "dataset directory written by the import command")
	timezone := fs.String("timezone", "", "timezone of service days, defaults to the dataset timezone")
	cacheSize := fs.Int("profile-cache-size", appconf.DefaultProfileCacheSize, "number of profiles kept in memory")
	cacheTTL := fs.Duration("profile-cache-ttl", appconf.DefaultProfileCacheTTL, "lifetime of cached profiles, 0 keeps them until evicted")
	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	if *configFile != "" {
		var conflicting []string
		fs.Visit(func(f *flag.Flag) {
			if f.Name != "f" {
				conflicting = append(conflicting, "-"+f.Name)
			}
		})
		if len(conflicting) > 0 {
			return appconf.Config{}, fmt.Errorf("-f cannot be combined with %v", conflicting)
		}
		jsonConfig, err := appconf.LoadFromFile(*configFile)
		if err != nil {
			return appconf.Config{}, err
		}
		return jsonConfig.ToAppConfig(), nil
	}

	if *dataDir == "" {
		return appconf.Config{}, errors.New("-data-dir is required")
	}
	return appconf.Config{
		Port:             *port,
		Env:              appconf.EnvFlagToEnvironment(*env),
		ApiKeys:          ParseAPIKeys(*apiKeys),
		Verbose:          *verbose,
		RateLimit:        *rateLimit,
		DataDir:          *dataDir,
		Timezone:         *timezone,
		ProfileCacheSize: *cacheSize,
		ProfileCacheTTL:  *cacheTTL,
	}, nil
}

