package daykcal

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/saadjs/daykcal/internal/app"
	"github.com/saadjs/daykcal/internal/calendar"
	"github.com/saadjs/daykcal/internal/config"
	"github.com/saadjs/daykcal/internal/dayclock"
	"github.com/saadjs/daykcal/internal/db"
	"github.com/saadjs/daykcal/internal/estimator"
	"github.com/saadjs/daykcal/internal/logging"
	"github.com/saadjs/daykcal/internal/service"
	"github.com/saadjs/daykcal/internal/store"
)

// envFile is read on every invocation when present.
const envFile = ".env"

// clockSource is swapped out by tests.
var clockSource dayclock.Clock = dayclock.RealClock{}

// appEnv is what a command sees once the database is open and the day
// clock has been reconciled.
type appEnv struct {
	cfg    config.Config
	dbPath string
	log    logging.Logger
	deps   service.Deps
}

func loadSettings() (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if providerFlag != "" {
		cfg.Provider = strings.ToLower(strings.TrimSpace(providerFlag))
	}
	return cfg, nil
}

func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

func openDB(cfg config.Config, run func(*sql.DB, string) error) error {
	path, err := resolveDBPath(cfg)
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb, path)
}

func withDB(run func(*sql.DB) error) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	return openDB(cfg, func(sqldb *sql.DB, _ string) error {
		return run(sqldb)
	})
}

// withApp opens the database, loads the day clock and runs one
// reconciliation before handing control to run.
func withApp(ctx context.Context, run func(context.Context, *appEnv) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	log, err := logging.New(nil, cfg.LogLevel)
	if err != nil {
		return err
	}
	return openDB(cfg, func(sqldb *sql.DB, path string) error {
		st := store.NewSQLiteStore(sqldb)
		offset, err := service.UTCOffset(sqldb)
		if err != nil {
			return err
		}
		machine, err := dayclock.Load(ctx, st, clockSource, offset, log)
		if err != nil {
			return err
		}
		if _, err := machine.Tick(ctx); err != nil {
			return err
		}
		env := &appEnv{
			cfg:    cfg,
			dbPath: path,
			log:    log,
			deps:   service.Deps{DB: sqldb, Store: st, Clock: machine, Log: log},
		}
		return run(ctx, env)
	})
}

// useEstimator builds the configured estimator. Flags and environment win
// over the provider and model persisted in app_config.
func (e *appEnv) useEstimator() error {
	provider, model, err := service.EstimatorProvider(e.deps.DB)
	if err != nil {
		return err
	}
	if e.cfg.Provider != "" {
		provider = e.cfg.Provider
	}
	if e.cfg.Model != "" {
		model = e.cfg.Model
	}
	est, err := estimator.New(provider, estimator.Options{
		APIKey:     e.cfg.APIKey(provider),
		BaseURL:    e.cfg.EstimatorBaseURL,
		Model:      model,
		HTTPClient: &http.Client{Timeout: e.cfg.EstimatorTimeout},
		Logger:     logging.Component(e.log, "estimator"),
	})
	if err != nil {
		return err
	}
	e.deps.Estimator = est
	return nil
}

func (e *appEnv) offset() int {
	return e.deps.Clock.OffsetHours()
}

func parsePositiveInt(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// parseDateOr returns the normalized key for value, or fallback when value
// is empty.
func parseDateOr(value, fallback string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return calendar.ParseKey(value)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
