/*
Copyright © 2024 the AQILab authors.
This file is part of AQILab.

AQILab is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AQILab is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AQILab.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package store keeps a record of completed simulation runs in a SQLite
// database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("store: run not found")

// Run is the record of one simulation run.
type Run struct {
	ID      string
	Created time.Time

	// Fingerprint identifies the inputs of the run. Runs with the same
	// fingerprint produce the same results.
	Fingerprint string

	// Config is the JSON encoded run configuration.
	Config json.RawMessage

	Steps     int
	Aggregate []float64

	// FinalSum and FinalMax summarize the final grid.
	FinalSum, FinalMax float64
}

// Store is a database of simulation runs.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating it if necessary, and brings
// its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("store: loading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("store: creating sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("store: creating migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	// m is not closed here because that would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migration up failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logrus.WithField("component", "migrate").Debugf(format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun stores r and returns its ID. A new ID is assigned if r.ID is
// empty, and the current time is used if r.Created is zero.
func (s *Store) SaveRun(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Created.IsZero() {
		r.Created = time.Now()
	}
	if len(r.Config) == 0 {
		r.Config = json.RawMessage("{}")
	}
	if !json.Valid(r.Config) {
		return "", fmt.Errorf("store: run %s has an invalid JSON configuration", r.ID)
	}
	agg := r.Aggregate
	if agg == nil {
		agg = []float64{}
	}
	aggJSON, err := json.Marshal(agg)
	if err != nil {
		return "", fmt.Errorf("store: encoding aggregate series: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO runs
		(run_id, created_at, fingerprint, config_json, steps, aggregate_json, final_sum, final_max)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Created.UTC().Format(time.RFC3339Nano), r.Fingerprint, string(r.Config),
		r.Steps, string(aggJSON), r.FinalSum, r.FinalMax)
	if err != nil {
		return "", fmt.Errorf("store: saving run %s: %w", r.ID, err)
	}
	return r.ID, nil
}

const selectRuns = `SELECT run_id, created_at, fingerprint, config_json, steps,
	aggregate_json, final_sum, final_max FROM runs`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r                Run
		created, cfg, ag string
	)
	if err := row.Scan(&r.ID, &created, &r.Fingerprint, &cfg, &r.Steps, &ag, &r.FinalSum, &r.FinalMax); err != nil {
		return nil, err
	}
	var err error
	if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("store: run %s: parsing creation time: %w", r.ID, err)
	}
	r.Config = json.RawMessage(cfg)
	if err = json.Unmarshal([]byte(ag), &r.Aggregate); err != nil {
		return nil, fmt.Errorf("store: run %s: decoding aggregate series: %w", r.ID, err)
	}
	return &r, nil
}

// GetRun returns the run with the given ID, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+" WHERE run_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	} else if err != nil {
		return nil, fmt.Errorf("store: getting run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	return s.query(ctx, selectRuns+" ORDER BY created_at DESC, run_id")
}

// FindByFingerprint returns the runs with the given fingerprint, newest first.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) ([]*Run, error) {
	return s.query(ctx, selectRuns+" WHERE fingerprint = ? ORDER BY created_at DESC, run_id", fingerprint)
}

func (s *Store) query(ctx context.Context, q string, args ...interface{}) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: querying runs: %w", err)
	}
	return runs, nil
}
