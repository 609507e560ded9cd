package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/daykcal/internal/dayclock"
	"github.com/saadjs/daykcal/internal/estimator"
	"github.com/saadjs/daykcal/internal/logging"
	"github.com/saadjs/daykcal/internal/model"
	"github.com/saadjs/daykcal/internal/store"
)

// Deps bundles the collaborators the event operations need. DB and
// Estimator may be nil when an operation does not use them.
type Deps struct {
	DB        *sql.DB
	Store     store.Store
	Clock     *dayclock.Machine
	Estimator estimator.Estimator
	Log       logging.Logger
}

func (d Deps) logger() logging.Logger {
	return logging.Component(d.Log, "service")
}

// LoadEvents returns the full event log in stored order.
func LoadEvents(ctx context.Context, st store.Store) ([]model.Event, error) {
	events := make([]model.Event, 0)
	if _, err := store.LoadJSON(ctx, st, store.KeyEvents, &events); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}

func saveEvents(ctx context.Context, st store.Store, events []model.Event) error {
	if events == nil {
		events = []model.Event{}
	}
	if err := store.SaveJSON(ctx, st, store.KeyEvents, events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}

func validateNonNegativeInt(name string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
