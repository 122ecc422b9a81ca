package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
)

const (
	locationWindowDays = 2
	recentWindowHours  = 48

	timestampLayout = "2006-01-02T15:04"
	displayLayout   = "2006-01-02 15:04"

	dirMode  = 0o755
	fileMode = 0o644

	ExcelFilename = "weather_data.xlsx"
	PDFFilename   = "weather_report.pdf"

	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PDFContentType   = "application/pdf"
)

// ErrNoData is returned when the selected window holds no observations.
// Exports never produce an empty-but-valid file.
var ErrNoData = errors.New("no weather data available for export")

// Artifact is a generated export file, already written to the export
// directory and carried back to the handler as bytes.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Querier interface {
	ByLocation(ctx context.Context, lat, lon float64, days int) ([]models.Observation, error)
	MostRecentLocationWindow(ctx context.Context, hours int) ([]models.Observation, error)
}

type Service struct {
	store     Querier
	clock     clockwork.Clock
	logger    *log.Logger
	exportDir string
}

func NewService(store Querier, clock clockwork.Clock, logger *log.Logger, exportDir string) *Service {
	return &Service{store: store, clock: clock, logger: logger, exportDir: exportDir}
}

// Excel renders the selected window as a single-sheet workbook, rows ascending
// by timestamp.
func (s *Service) Excel(ctx context.Context, coord *models.Coordinate) (Artifact, error) {
	obs, err := s.selectData(ctx, coord)
	if err != nil {
		return Artifact{}, err
	}

	data, err := buildWorkbook(obs)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to generate Excel export: %w", err)
	}

	if err := s.writeArtifact(ExcelFilename, data); err != nil {
		return Artifact{}, err
	}

	s.logger.Printf("excel export generated: %d records, %d bytes", len(obs), len(data))
	return Artifact{Filename: ExcelFilename, ContentType: ExcelContentType, Data: data}, nil
}

// PDF renders the selected window as a charted report: two stacked time-series
// panels embedded into a paginated document with a metadata block.
func (s *Service) PDF(ctx context.Context, coord *models.Coordinate) (Artifact, error) {
	obs, err := s.selectData(ctx, coord)
	if err != nil {
		return Artifact{}, err
	}

	times, err := parseTimestamps(obs)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to generate weather chart: %w", err)
	}

	chartPNG, err := renderChart(times, obs)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to generate weather chart: %w", err)
	}

	meta := buildReportMeta(obs, times, chartPNG, s.clock.Now())
	data, err := buildPDF(meta)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to generate PDF report: %w", err)
	}

	if err := s.writeArtifact(PDFFilename, data); err != nil {
		return Artifact{}, err
	}

	s.logger.Printf("pdf report generated: %d records, %d bytes", len(obs), len(data))
	return Artifact{Filename: PDFFilename, ContentType: PDFContentType, Data: data}, nil
}

// selectData picks the observation window: an explicit coordinate queries that
// location's trailing two days, otherwise the most recently ingested location's
// trailing 48 hours. The store returns rows newest first; exports want them
// oldest first, so re-sort here.
func (s *Service) selectData(ctx context.Context, coord *models.Coordinate) ([]models.Observation, error) {
	var (
		obs []models.Observation
		err error
	)
	if coord != nil {
		obs, err = s.store.ByLocation(ctx, coord.Latitude, coord.Longitude, locationWindowDays)
	} else {
		obs, err = s.store.MostRecentLocationWindow(ctx, recentWindowHours)
	}
	if err != nil {
		return nil, fmt.Errorf("read weather data: %w", err)
	}
	if len(obs) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Timestamp < obs[j].Timestamp })
	return obs, nil
}

func (s *Service) writeArtifact(name string, data []byte) error {
	if err := os.MkdirAll(s.exportDir, dirMode); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(s.exportDir, name)
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("write export file %s: %w", path, err)
	}
	return nil
}

// parseTimestamps converts the stored ISO strings into times for charting and
// range formatting. Observations are already ascending here.
func parseTimestamps(obs []models.Observation) ([]time.Time, error) {
	times := make([]time.Time, len(obs))
	for i, o := range obs {
		t, err := time.Parse(timestampLayout, o.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", o.Timestamp, err)
		}
		times[i] = t
	}
	return times, nil
}
