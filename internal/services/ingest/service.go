package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
	"github.com/vladyslav-tk/weather-export-api/internal/services/forecast"
)

// ErrMalformedResponse marks an upstream payload missing any of the three
// hourly arrays.
var ErrMalformedResponse = errors.New("invalid API response: missing required data fields")

// ValidationError names the offending coordinate field and its bound.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64, start, end time.Time) (forecast.HourlySeries, error)
}

type Inserter interface {
	Insert(ctx context.Context, rows []models.Observation) (int, error)
}

// Service runs one ingestion: validate the coordinate, fetch the hourly
// series, normalize it into observation rows and persist the batch atomically.
type Service struct {
	fetcher     Fetcher
	store       Inserter
	clock       clockwork.Clock
	logger      *log.Logger
	daysToFetch int
}

func NewService(fetcher Fetcher, store Inserter, clock clockwork.Clock, logger *log.Logger, daysToFetch int) *Service {
	return &Service{
		fetcher:     fetcher,
		store:       store,
		clock:       clock,
		logger:      logger,
		daysToFetch: daysToFetch,
	}
}

// Ingest fetches and stores weather data for the coordinate. The returned
// error is a *ValidationError for bad input; anything else is a pipeline
// failure the caller reports as a server error.
func (s *Service) Ingest(ctx context.Context, lat, lon float64) (models.IngestSummary, error) {
	if err := validateCoordinate(lat, lon); err != nil {
		return models.IngestSummary{}, err
	}

	end := s.clock.Now()
	start := end.AddDate(0, 0, -s.daysToFetch)

	series, err := s.fetcher.Fetch(ctx, lat, lon, start, end)
	if err != nil {
		return models.IngestSummary{}, err
	}

	rows, err := normalize(series, lat, lon)
	if err != nil {
		return models.IngestSummary{}, err
	}

	count, err := s.store.Insert(ctx, rows)
	if err != nil {
		return models.IngestSummary{}, fmt.Errorf("store weather data: %w", err)
	}

	s.logger.Printf("stored %d weather records for (%v, %v)", count, lat, lon)

	return models.IngestSummary{
		Status:       "success",
		Message:      fmt.Sprintf("Successfully stored %d weather records", count),
		RecordsCount: count,
		Latitude:     lat,
		Longitude:    lon,
		DateRange:    fmt.Sprintf("%d days", s.daysToFetch),
	}, nil
}

func validateCoordinate(lat, lon float64) error {
	// NaN slips through range comparisons, so finiteness is checked first.
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return &ValidationError{Field: "lat", Message: "latitude must be between -90 and 90"}
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return &ValidationError{Field: "lon", Message: "longitude must be between -180 and 180"}
	}
	return nil
}

// normalize builds one observation per index. Null readings become 0.0; the
// row is kept, not dropped. The three arrays must be parallel; a ragged
// payload is malformed, not partially ingested.
func normalize(series forecast.HourlySeries, lat, lon float64) ([]models.Observation, error) {
	if len(series.Time) == 0 ||
		len(series.Temperature) != len(series.Time) ||
		len(series.Humidity) != len(series.Time) {
		return nil, ErrMalformedResponse
	}

	rows := make([]models.Observation, 0, len(series.Time))
	for i, ts := range series.Time {
		var temp, hum float64
		if series.Temperature[i] != nil {
			temp = *series.Temperature[i]
		}
		if series.Humidity[i] != nil {
			hum = *series.Humidity[i]
		}
		rows = append(rows, models.Observation{
			Timestamp:   ts,
			Latitude:    lat,
			Longitude:   lon,
			Temperature: temp,
			Humidity:    hum,
		})
	}
	return rows, nil
}
