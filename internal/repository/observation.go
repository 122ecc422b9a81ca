package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vladyslav-tk/weather-export-api/internal/models"

	_ "modernc.org/sqlite"
)

// timestampLayout matches the hourly ISO-8601 local-time strings the upstream
// API returns. Cutoffs are formatted the same way, so string comparison in SQL
// orders correctly.
const timestampLayout = "2006-01-02T15:04"

const dayHours = 24

const selectColumns = `id, timestamp, latitude, longitude, temperature_2m, relative_humidity_2m, created_at`

// ObservationRepository owns the observations table. Location match uses exact
// float equality on purpose: coordinates differing only in rounding are
// separate locations.
type ObservationRepository struct {
	db     *sql.DB
	clock  clockwork.Clock
	logger *log.Logger
}

func NewObservationRepository(db *sql.DB, clock clockwork.Clock, logger *log.Logger) *ObservationRepository {
	return &ObservationRepository{db: db, clock: clock, logger: logger}
}

// Insert writes the whole batch in one transaction. On any failure the
// transaction is rolled back and nothing is kept.
func (r *ObservationRepository) Insert(ctx context.Context, rows []models.Observation) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (timestamp, latitude, longitude, temperature_2m, relative_humidity_2m, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		r.rollback(tx)
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		if err := stmt.Close(); err != nil {
			r.logger.Println("failed to close insert statement:", err)
		}
	}(stmt)

	// created_at is a TEXT column; store RFC3339 so it scans back as a string.
	now := r.clock.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			row.Timestamp, row.Latitude, row.Longitude, row.Temperature, row.Humidity, now)
		if err != nil {
			r.rollback(tx)
			return 0, fmt.Errorf("insert observation %q: %w", row.Timestamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit observations: %w", err)
	}
	return len(rows), nil
}

// LastNHours returns observations across all locations with a timestamp inside
// the trailing window, newest first.
func (r *ObservationRepository) LastNHours(ctx context.Context, hours int) ([]models.Observation, error) {
	cutoff := r.cutoff(time.Duration(hours) * time.Hour)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM observations
		WHERE timestamp >= ?
		ORDER BY timestamp DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query last %d hours: %w", hours, err)
	}
	return r.collect(rows)
}

// ByLocation returns observations for the exact coordinate pair within the
// trailing days window, newest first.
func (r *ObservationRepository) ByLocation(ctx context.Context, lat, lon float64, days int) ([]models.Observation, error) {
	cutoff := r.cutoff(time.Duration(days*dayHours) * time.Hour)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM observations
		WHERE latitude = ? AND longitude = ? AND timestamp >= ?
		ORDER BY timestamp DESC`, lat, lon, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query location (%v, %v): %w", lat, lon, err)
	}
	return r.collect(rows)
}

// MostRecentLocationWindow resolves the coordinate of the most recently
// inserted row and returns that location's observations within the trailing
// hours window. An empty store yields an empty result, not an error.
func (r *ObservationRepository) MostRecentLocationWindow(ctx context.Context, hours int) ([]models.Observation, error) {
	var lat, lon float64
	err := r.db.QueryRowContext(ctx, `
		SELECT latitude, longitude
		FROM observations
		ORDER BY id DESC
		LIMIT 1`).Scan(&lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve most recent location: %w", err)
	}

	cutoff := r.cutoff(time.Duration(hours) * time.Hour)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM observations
		WHERE latitude = ? AND longitude = ? AND timestamp >= ?
		ORDER BY timestamp DESC`, lat, lon, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query most recent location window: %w", err)
	}
	return r.collect(rows)
}

func (r *ObservationRepository) cutoff(window time.Duration) string {
	return r.clock.Now().Add(-window).Format(timestampLayout)
}

func (r *ObservationRepository) collect(rows *sql.Rows) ([]models.Observation, error) {
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.logger.Println("failed to close result rows:", err)
		}
	}(rows)

	var obs []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ID, &o.Timestamp, &o.Latitude, &o.Longitude,
			&o.Temperature, &o.Humidity, &o.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

func (r *ObservationRepository) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		r.logger.Println("failed to roll back insert transaction:", err)
	}
}
