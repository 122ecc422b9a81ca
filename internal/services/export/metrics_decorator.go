package export

import (
	"context"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
)

type Renderer interface {
	Excel(ctx context.Context, coord *models.Coordinate) (Artifact, error)
	PDF(ctx context.Context, coord *models.Coordinate) (Artifact, error)
}

type exportRecorder interface {
	RecordExport(kind string, err error)
}

// MetricsDecorator counts export attempts per kind and result.
type MetricsDecorator struct {
	next     Renderer
	recorder exportRecorder
}

func NewMetricsDecorator(next Renderer, recorder exportRecorder) *MetricsDecorator {
	return &MetricsDecorator{next: next, recorder: recorder}
}

func (d *MetricsDecorator) Excel(ctx context.Context, coord *models.Coordinate) (Artifact, error) {
	artifact, err := d.next.Excel(ctx, coord)
	d.recorder.RecordExport("excel", err)
	return artifact, err
}

func (d *MetricsDecorator) PDF(ctx context.Context, coord *models.Coordinate) (Artifact, error) {
	artifact, err := d.next.PDF(ctx, coord)
	d.recorder.RecordExport("pdf", err)
	return artifact, err
}
