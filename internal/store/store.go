// Package store is the key/value persistence used for daykcal state.
//
// Values are opaque bytes, in practice JSON documents. A missing key is not
// an error: Load reports it with ok=false and callers fall back to defaults.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	KeyEvents     = "events"
	KeyClockState = "clock_state"
	KeyUserGoal   = "user_goal"
)

type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// LoadJSON decodes the value under key into v. It reports ok=false and
// leaves v untouched when the key is absent.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Save(ctx, key, raw)
}
