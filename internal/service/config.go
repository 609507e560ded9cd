package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/estimator"
)

const (
	ConfigUTCOffset         = "utc_offset_hours"
	ConfigEstimatorProvider = "estimator_provider"
	ConfigEstimatorModel    = "estimator_model"
)

// validateConfig checks values for keys daykcal itself reads. Other keys are
// stored as given.
func validateConfig(key, value string) error {
	switch key {
	case ConfigUTCOffset:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a whole number of hours", key)
		}
		if n < -12 || n > 14 {
			return fmt.Errorf("%s must be between -12 and 14", key)
		}
	case ConfigEstimatorProvider:
		if value != estimator.ProviderGemini && value != estimator.ProviderOpenAI {
			return fmt.Errorf("%s must be gemini or openai", key)
		}
	}
	return nil
}

func SetConfig(db *sql.DB, key, value string) error {
	key = normalizeName(key)
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	value = strings.TrimSpace(value)
	if key == ConfigEstimatorProvider {
		value = strings.ToLower(value)
	}
	if err := validateConfig(key, value); err != nil {
		return err
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = normalizeName(key)
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// UTCOffset returns the configured civil-day offset, defaulting to +3.
func UTCOffset(db *sql.DB) (int, error) {
	raw, ok, err := GetConfig(db, ConfigUTCOffset)
	if err != nil {
		return 0, err
	}
	if !ok {
		return calendar.DefaultOffsetHours, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("stored %s %q is not a number", ConfigUTCOffset, raw)
	}
	return n, nil
}

// EstimatorProvider returns the configured provider and optional model.
func EstimatorProvider(db *sql.DB) (provider, model string, err error) {
	provider, ok, err := GetConfig(db, ConfigEstimatorProvider)
	if err != nil {
		return "", "", err
	}
	if !ok || provider == "" {
		provider = estimator.ProviderGemini
	}
	model, _, err = GetConfig(db, ConfigEstimatorModel)
	if err != nil {
		return "", "", err
	}
	return provider, model, nil
}
