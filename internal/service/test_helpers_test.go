package service_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/daykcal/internal/dayclock"
	"github.com/saadjs/daykcal/internal/db"
	"github.com/saadjs/daykcal/internal/estimator"
	"github.com/saadjs/daykcal/internal/logging"
	"github.com/saadjs/daykcal/internal/service"
	"github.com/saadjs/daykcal/internal/store"
)

// 2026-03-10 12:00 at UTC+3.
var testNoon = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daykcal.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

type testEnv struct {
	deps  service.Deps
	clock *dayclock.MockClock
}

func newTestEnv(t *testing.T, est estimator.Estimator) testEnv {
	t.Helper()
	sqldb := newTestDB(t)
	st := store.NewSQLiteStore(sqldb)
	clk := dayclock.NewMockClock(testNoon)
	m, err := dayclock.Load(context.Background(), st, clk, 3, logging.Discard())
	if err != nil {
		t.Fatalf("load clock: %v", err)
	}
	return testEnv{
		deps: service.Deps{
			DB:        sqldb,
			Store:     st,
			Clock:     m,
			Estimator: est,
			Log:       logging.Discard(),
		},
		clock: clk,
	}
}

// fakeEstimator replays a fixed outcome.
type fakeEstimator struct {
	out     estimator.Outcome
	err     error
	calls   int
	lastArg string
}

func (f *fakeEstimator) Name() string { return "fake" }

func (f *fakeEstimator) EstimateFromImage(_ context.Context, image []byte, mimeType string) (estimator.Outcome, error) {
	f.calls++
	f.lastArg = mimeType
	return f.out, f.err
}

func (f *fakeEstimator) EstimateFromText(_ context.Context, description string) (estimator.Outcome, error) {
	f.calls++
	f.lastArg = description
	return f.out, f.err
}
