package appconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `{
  "port": 8080,
  "env": "production",
  "api-keys": ["key1", "key2"],
  "rate-limit": 50,
  "data-dir": "/var/lib/journeyplanner",
  "timezone": "Europe/Zurich",
  "profile-cache-size": 16,
  "profile-cache-ttl": "5m"
}`)

	jsonConfig, err := LoadFromFile(path)
	require.NoError(t, err)
	cfg := jsonConfig.ToAppConfig()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, Production, cfg.Env)
	assert.Equal(t, []string{"key1", "key2"}, cfg.ApiKeys)
	assert.Equal(t, 50, cfg.RateLimit)
	assert.Equal(t, "/var/lib/journeyplanner", cfg.DataDir)
	assert.Equal(t, "Europe/Zurich", cfg.Timezone)
	assert.Equal(t, 16, cfg.ProfileCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.ProfileCacheTTL)
}

func TestToAppConfigDefaults(t *testing.T) {
	jsonConfig, err := LoadFromFile(writeConfig(t, `{"data-dir": "data"}`))
	require.NoError(t, err)
	cfg := jsonConfig.ToAppConfig()

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, Development, cfg.Env)
	assert.Equal(t, []string{}, cfg.ApiKeys)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, DefaultProfileCacheSize, cfg.ProfileCacheSize)
	assert.Equal(t, DefaultProfileCacheTTL, cfg.ProfileCacheTTL)
}

func TestLoadFromFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "malformed", content: `{"port": `, want: "failed to parse JSON config"},
		{name: "missing data dir", content: `{"port": 80}`, want: "invalid configuration"},
		{name: "unknown env", content: `{"data-dir": "d", "env": "staging"}`, want: "invalid configuration"},
		{name: "port out of range", content: `{"data-dir": "d", "port": 70000}`, want: "invalid configuration"},
		{name: "bad timezone", content: `{"data-dir": "d", "timezone": "Mars/Olympus"}`, want: "invalid configuration"},
		{name: "bad ttl", content: `{"data-dir": "d", "profile-cache-ttl": "soon"}`, want: "invalid configuration"},
		{name: "empty api key", content: `{"data-dir": "d", "api-keys": [""]}`, want: "invalid configuration"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadFromFile(writeConfig(t, tc.content))
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat config file")
}

func TestEnvFlagToEnvironment(t *testing.T) {
	assert.Equal(t, Production, EnvFlagToEnvironment("production"))
	assert.Equal(t, Production, EnvFlagToEnvironment(" PROD "))
	assert.Equal(t, Test, EnvFlagToEnvironment("test"))
	assert.Equal(t, Development, EnvFlagToEnvironment("development"))
	assert.Equal(t, Development, EnvFlagToEnvironment("whatever"))
	assert.Equal(t, "production", Production.String())
}
