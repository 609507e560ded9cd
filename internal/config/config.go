// Package config resolves process settings from defaults, .env files and
// the environment. Command-line flags are applied on top by cmd/daykcal.
//
// Settings that belong to the user's data (UTC offset, preferred estimator)
// live in the database instead; see service.GetConfig.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDBPath       = "DAYKCAL_DB"
	EnvLogLevel     = "DAYKCAL_LOG_LEVEL"
	EnvProvider     = "DAYKCAL_PROVIDER"
	EnvModel        = "DAYKCAL_MODEL"
	EnvEstimatorURL = "DAYKCAL_ESTIMATOR_URL"
	EnvTimeout      = "DAYKCAL_TIMEOUT"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"

	DefaultLogLevel = "warn"
	DefaultTimeout  = 30 * time.Second
)

type Config struct {
	DBPath   string
	LogLevel string

	// Provider overrides the persisted estimator_provider when set.
	Provider         string
	Model            string
	EstimatorBaseURL string
	EstimatorTimeout time.Duration

	GeminiAPIKey string
	OpenAIAPIKey string
}

func Default() Config {
	return Config{
		LogLevel:         DefaultLogLevel,
		EstimatorTimeout: DefaultTimeout,
	}
}

// Load reads the given .env files (missing files are skipped) and the
// process environment. Real environment variables win over file values, and
// earlier files win over later ones.
func Load(files ...string) (Config, error) {
	fromFiles := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range vals {
			if _, seen := fromFiles[k]; !seen {
				fromFiles[k] = v
			}
		}
	}
	return FromLookup(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fromFiles[key]
	})
}

// FromLookup builds a Config from an arbitrary key lookup.
func FromLookup(get func(string) string) (Config, error) {
	cfg := Default()
	cfg.DBPath = strings.TrimSpace(get(EnvDBPath))
	if v := strings.TrimSpace(get(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(get(EnvProvider)))
	cfg.Model = strings.TrimSpace(get(EnvModel))
	cfg.EstimatorBaseURL = strings.TrimSpace(get(EnvEstimatorURL))
	cfg.GeminiAPIKey = strings.TrimSpace(get(EnvGeminiKey))
	cfg.OpenAIAPIKey = strings.TrimSpace(get(EnvOpenAIKey))

	if v := strings.TrimSpace(get(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("%s must be > 0", EnvTimeout)
		}
		cfg.EstimatorTimeout = d
	}
	return cfg, nil
}

// APIKey returns the credential for the named estimator provider.
func (c Config) APIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return c.OpenAIAPIKey
	default:
		return c.GeminiAPIKey
	}
}
