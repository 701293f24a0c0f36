// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit handling modes accepted by INSIGHTS_RATE_MODE.
const (
	RateModeWait     = "wait"
	RateModeFailFast = "fail-fast"
)

// Defaults applied when the environment leaves a setting unset.
const (
	DefaultTimeout     = 2 * time.Minute
	DefaultMaxItems    = 1000
	DefaultMaxRateWait = 15 * time.Minute
)

// Config carries the settings shared by every operation.
type Config struct {
	// Token authenticates API calls. Read from GITHUB_TOKEN, falling back
	// to GH_TOKEN. May be empty; callers decide whether that is fatal.
	Token string

	// APIURL points at a GitHub Enterprise Server instance root. Empty
	// means github.com.
	APIURL string

	// Timeout bounds one operation end to end.
	Timeout time.Duration

	// MaxItems caps how many records any single listing collects.
	MaxItems int

	// RateMode selects between waiting out rate limit resets and failing
	// fast with the reset time.
	RateMode string

	// MaxRateWait bounds a single rate limit wait in wait mode.
	MaxRateWait time.Duration

	// TriageRulesFile and HealthWeightsFile optionally point at YAML
	// overrides for the built-in tables.
	TriageRulesFile   string
	HealthWeightsFile string

	// KnownVersionsFile optionally points at a YAML inventory of latest
	// package versions used to judge dependency staleness.
	KnownVersionsFile string
}

// Load reads the environment. A missing .env file is not an error; a value
// that is set but unparseable is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Token:             firstNonEmpty(os.Getenv("GITHUB_TOKEN"), os.Getenv("GH_TOKEN")),
		APIURL:            strings.TrimSpace(os.Getenv("GITHUB_API_URL")),
		TriageRulesFile:   strings.TrimSpace(os.Getenv("INSIGHTS_TRIAGE_RULES")),
		HealthWeightsFile: strings.TrimSpace(os.Getenv("INSIGHTS_HEALTH_WEIGHTS")),
		KnownVersionsFile: strings.TrimSpace(os.Getenv("INSIGHTS_KNOWN_VERSIONS")),
	}

	var err error
	if cfg.Timeout, err = durationEnv("INSIGHTS_TIMEOUT", DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxRateWait, err = durationEnv("INSIGHTS_MAX_RATE_WAIT", DefaultMaxRateWait); err != nil {
		return nil, err
	}
	if cfg.MaxItems, err = intEnv("INSIGHTS_MAX_ITEMS", DefaultMaxItems); err != nil {
		return nil, err
	}
	if cfg.RateMode, err = rateModeEnv("INSIGHTS_RATE_MODE"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return n, nil
}

func rateModeEnv(key string) (string, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "":
		return RateModeWait, nil
	case RateModeWait, RateModeFailFast:
		return raw, nil
	default:
		return "", fmt.Errorf("invalid %s %q: expected %q or %q", key, raw, RateModeWait, RateModeFailFast)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
