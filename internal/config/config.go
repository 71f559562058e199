// Package config loads client settings from the environment with defaults
// and validation, and owns the explicit load/save boundary for the persisted
// session token.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the client.
type Config struct {
	APIURL string // MULTIPOST_API_URL

	Timeout       time.Duration // MULTIPOST_TIMEOUT, general requests
	SingleTimeout time.Duration // MULTIPOST_SINGLE_TIMEOUT, one-network publish
	MultiTimeout  time.Duration // MULTIPOST_MULTI_TIMEOUT, batch publish

	PollInitialDelay time.Duration // MULTIPOST_POLL_DELAY
	PollInterval     time.Duration // MULTIPOST_POLL_INTERVAL
	PollAttempts     int           // MULTIPOST_POLL_ATTEMPTS

	Verbose bool // MULTIPOST_VERBOSE
}

// Load reads configuration from the environment, consulting a .env file in
// the working directory when present, then applies defaults and validates.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIURL:           getenv("MULTIPOST_API_URL", "http://127.0.0.1:8000"),
		Timeout:          getdur("MULTIPOST_TIMEOUT", 30*time.Second),
		SingleTimeout:    getdur("MULTIPOST_SINGLE_TIMEOUT", 60*time.Second),
		MultiTimeout:     getdur("MULTIPOST_MULTI_TIMEOUT", 180*time.Second),
		PollInitialDelay: getdur("MULTIPOST_POLL_DELAY", 1*time.Second),
		PollInterval:     getdur("MULTIPOST_POLL_INTERVAL", 2*time.Second),
		PollAttempts:     getint("MULTIPOST_POLL_ATTEMPTS", 15),
		Verbose:          getbool("MULTIPOST_VERBOSE", false),
	}

	cfg.APIURL = strings.TrimSuffix(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		return Config{}, errors.New("MULTIPOST_API_URL must not be empty")
	}
	if cfg.PollAttempts < 1 {
		return Config{}, errors.New("MULTIPOST_POLL_ATTEMPTS must be >= 1")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getint(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getbool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
