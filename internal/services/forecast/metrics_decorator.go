package forecast

import (
	"context"
	"time"
)

type fetchRecorder interface {
	RecordUpstreamFetch(err error)
}

// MetricsDecorator counts upstream forecast API calls per result.
type MetricsDecorator struct {
	next     client
	recorder fetchRecorder
}

func NewMetricsDecorator(next client, recorder fetchRecorder) *MetricsDecorator {
	return &MetricsDecorator{next: next, recorder: recorder}
}

func (d *MetricsDecorator) Fetch(
	ctx context.Context, lat, lon float64, start, end time.Time,
) (HourlySeries, error) {
	series, err := d.next.Fetch(ctx, lat, lon, start, end)
	d.recorder.RecordUpstreamFetch(err)
	return series, err
}
