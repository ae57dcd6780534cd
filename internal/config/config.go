package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all tabrecon configuration.
type Config struct {
	Store StoreConfig
	Probe ProbeConfig
	Log   LogConfig
}

// StoreConfig describes how to reach the remote query interface.
type StoreConfig struct {
	// URL selects the backend by scheme: postgres://, mysql://, sqlite://,
	// sqlserver://, or http(s):// for a PostgREST-style table API.
	URL string
	// APIKey authenticates REST requests (sent as apikey and Bearer token).
	APIKey string
	// RESTSchema is sent as Accept-Profile/Content-Profile when non-empty.
	RESTSchema string
	// HTTPTimeout bounds each REST request.
	HTTPTimeout time.Duration
}

// ProbeConfig tunes the schema prober.
type ProbeConfig struct {
	// Column is the bogus field name used by the empty-table fallback insert.
	Column      string
	Concurrency int
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level string // "debug", "info", "warn", "error"
	JSON  bool
}

// DefaultProbeColumn is a field name no real table is expected to carry.
const DefaultProbeColumn = "invalid_column_name_probe"

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Store: StoreConfig{
			URL:         os.Getenv("TABRECON_DB_URL"),
			APIKey:      os.Getenv("TABRECON_API_KEY"),
			RESTSchema:  os.Getenv("TABRECON_REST_SCHEMA"),
			HTTPTimeout: getenvDuration("TABRECON_HTTP_TIMEOUT", 30*time.Second),
		},
		Probe: ProbeConfig{
			Column:      getenv("TABRECON_PROBE_COLUMN", DefaultProbeColumn),
			Concurrency: getenvInt("TABRECON_PROBE_CONCURRENCY", 4),
		},
		Log: LogConfig{
			Level: getenv("TABRECON_LOG_LEVEL", "info"),
			JSON:  strings.EqualFold(os.Getenv("TABRECON_LOG_FORMAT"), "json"),
		},
	}
}

// LoadDotEnv loads variables from the given .env files into the environment
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
