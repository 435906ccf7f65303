// Package config collects the service settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	Addr    string
	APIBase string

	// RecordsSource is SourceFile or SourcePostgres.
	RecordsSource string
	RecordsFile   string

	Title      string
	Subtitle   string
	StyleURL   string
	FitData    bool
	AdminToken string

	GeoJSONCacheTTL time.Duration

	TLSEnable       bool
	TLSCertPath     string
	TLSKeyPath      string
	TLSRedirect     bool
	TLSRedirectAddr string
}

// LoadDotEnv reads .env and data/env/.env when present. Variables already set win.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// Load reads the settings, falling back to defaults for anything unset or unparsable.
func Load() Config {
	c := Config{
		Addr:            env("ADDR", ":8080"),
		APIBase:         strings.TrimRight(env("API_BASE", "/api"), "/"),
		RecordsSource:   strings.ToLower(env("RECORDS_SOURCE", SourceFile)),
		RecordsFile:     env("RECORDS_FILE", filepath.Join("data", "data.json")),
		Title:           env("APP_TITLE", "Pagsusi"),
		Subtitle:        env("APP_SUBTITLE", "Machine Learning Analysis of Electoral Integrity in the 2025 Philippine Senate Elections"),
		StyleURL:        env("MAP_STYLE_URL", "https://basemaps.cartocdn.com/gl/positron-gl-style/style.json"),
		FitData:         os.Getenv("MAP_FIT_DATA") == "true",
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		GeoJSONCacheTTL: time.Duration(envInt("GEOJSON_CACHE_TTL_S", 600)) * time.Second,
		TLSEnable:       os.Getenv("TLS_ENABLE") == "true",
		TLSCertPath:     env("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:      env("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		TLSRedirect:     os.Getenv("TLS_REDIRECT_ENABLE") == "true",
		TLSRedirectAddr: env("TLS_REDIRECT_ADDR", ":80"),
	}
	if c.APIBase == "" {
		c.APIBase = "/api"
	}
	if c.RecordsSource != SourcePostgres {
		c.RecordsSource = SourceFile
	}
	return c
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
