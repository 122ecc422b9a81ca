//go:build unit

package repository_test

import (
	"context"
	"database/sql"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
	"github.com/vladyslav-tk/weather-export-api/internal/repository"

	_ "modernc.org/sqlite"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) *repository.ObservationRepository {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "../../migrations"))

	clock := clockwork.NewFakeClockAt(testNow)
	return repository.NewObservationRepository(db, clock, log.Default())
}

func hourlyRows(lat, lon float64, start time.Time, count int) []models.Observation {
	rows := make([]models.Observation, 0, count)
	for i := 0; i < count; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		rows = append(rows, models.Observation{
			Timestamp:   ts.Format("2006-01-02T15:04"),
			Latitude:    lat,
			Longitude:   lon,
			Temperature: 20 + float64(i),
			Humidity:    50 + float64(i),
		})
	}
	return rows
}

func TestInsert_ReturnsCount(t *testing.T) {
	repo := newTestRepository(t)

	count, err := repo.Insert(context.Background(), hourlyRows(40.0, -74.0, testNow.Add(-5*time.Hour), 5))
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestInsert_RowsScanBackWithInsertTime(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Insert(context.Background(), hourlyRows(40.0, -74.0, testNow.Add(-3*time.Hour), 3))
	require.NoError(t, err)

	got, err := repo.LastNHours(context.Background(), 48)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, o := range got {
		assert.Equal(t, testNow.Format(time.RFC3339), o.RecordedAt)
	}
}

func TestInsert_DuplicateIngestionDoublesRows(t *testing.T) {
	repo := newTestRepository(t)
	rows := hourlyRows(40.0, -74.0, testNow.Add(-10*time.Hour), 10)

	_, err := repo.Insert(context.Background(), rows)
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), rows)
	require.NoError(t, err)

	got, err := repo.ByLocation(context.Background(), 40.0, -74.0, 2)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestLastNHours_FiltersAndOrdersDescending(t *testing.T) {
	repo := newTestRepository(t)

	// 72 hourly rows ending at now; only the trailing 48 fall in the window.
	_, err := repo.Insert(context.Background(), hourlyRows(10.0, 10.0, testNow.Add(-71*time.Hour), 72))
	require.NoError(t, err)

	got, err := repo.LastNHours(context.Background(), 48)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Len(t, got, 49)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Timestamp, got[i].Timestamp)
	}
}

func TestByLocation_ExactFloatMatch(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Insert(context.Background(), hourlyRows(40.0, -74.0, testNow.Add(-3*time.Hour), 3))
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), hourlyRows(40.0001, -74.0, testNow.Add(-3*time.Hour), 3))
	require.NoError(t, err)

	got, err := repo.ByLocation(context.Background(), 40.0, -74.0, 2)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, o := range got {
		assert.Equal(t, 40.0, o.Latitude)
	}
}

func TestMostRecentLocationWindow_ReturnsLatestLocationOnly(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Insert(context.Background(), hourlyRows(10.0, 10.0, testNow.Add(-5*time.Hour), 5))
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), hourlyRows(20.0, 20.0, testNow.Add(-5*time.Hour), 5))
	require.NoError(t, err)

	got, err := repo.MostRecentLocationWindow(context.Background(), 48)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, o := range got {
		assert.Equal(t, 20.0, o.Latitude)
		assert.Equal(t, 20.0, o.Longitude)
	}
}

func TestMostRecentLocationWindow_EmptyStore(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.MostRecentLocationWindow(context.Background(), 48)
	require.NoError(t, err)
	assert.Empty(t, got)
}
