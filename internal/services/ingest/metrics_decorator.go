package ingest

import (
	"context"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
)

type Pipeline interface {
	Ingest(ctx context.Context, lat, lon float64) (models.IngestSummary, error)
}

type ingestRecorder interface {
	RecordIngest(records int, err error)
}

// MetricsDecorator counts pipeline runs and stored records.
type MetricsDecorator struct {
	next     Pipeline
	recorder ingestRecorder
}

func NewMetricsDecorator(next Pipeline, recorder ingestRecorder) *MetricsDecorator {
	return &MetricsDecorator{next: next, recorder: recorder}
}

func (d *MetricsDecorator) Ingest(ctx context.Context, lat, lon float64) (models.IngestSummary, error) {
	summary, err := d.next.Ingest(ctx, lat, lon)
	d.recorder.RecordIngest(summary.RecordsCount, err)
	return summary, err
}
