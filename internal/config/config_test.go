package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{"ADDR", "API_BASE", "RECORDS_SOURCE", "RECORDS_FILE", "MAP_FIT_DATA", "MAP_STYLE_URL",
	"ADMIN_TOKEN", "GEOJSON_CACHE_TTL_S", "TLS_ENABLE", "APP_TITLE"}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c := Load()
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "/api", c.APIBase)
	assert.Equal(t, SourceFile, c.RecordsSource)
	assert.Equal(t, filepath.Join("data", "data.json"), c.RecordsFile)
	assert.Equal(t, "Pagsusi", c.Title)
	assert.False(t, c.FitData)
	assert.False(t, c.TLSEnable)
	assert.Equal(t, 10*time.Minute, c.GeoJSONCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, c Config)
	}{
		{"api base trailing slash", "API_BASE", "/v1/", func(t *testing.T, c Config) { assert.Equal(t, "/v1", c.APIBase) }},
		{"api base root", "API_BASE", "/", func(t *testing.T, c Config) { assert.Equal(t, "/api", c.APIBase) }},
		{"postgres source", "RECORDS_SOURCE", "Postgres", func(t *testing.T, c Config) { assert.Equal(t, SourcePostgres, c.RecordsSource) }},
		{"unknown source", "RECORDS_SOURCE", "s3", func(t *testing.T, c Config) { assert.Equal(t, SourceFile, c.RecordsSource) }},
		{"fit data", "MAP_FIT_DATA", "true", func(t *testing.T, c Config) { assert.True(t, c.FitData) }},
		{"ttl", "GEOJSON_CACHE_TTL_S", "30", func(t *testing.T, c Config) { assert.Equal(t, 30*time.Second, c.GeoJSONCacheTTL) }},
		{"bad ttl", "GEOJSON_CACHE_TTL_S", "soon", func(t *testing.T, c Config) { assert.Equal(t, 10*time.Minute, c.GeoJSONCacheTTL) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			tc.check(t, Load())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_TITLE=Staging\nADDR=:9090\n"), 0o644))
	t.Setenv("ADDR", ":7070")
	os.Unsetenv("APP_TITLE")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	LoadDotEnv()
	c := Load()
	assert.Equal(t, "Staging", c.Title)
	assert.Equal(t, ":7070", c.Addr, "process env wins over .env")
}
