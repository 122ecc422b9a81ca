package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

var errUnexpectedResult = errors.New("unexpected result type from wrapped client")

const (
	timeInterval = time.Duration(30) * time.Second
	timeTimeOut  = time.Duration(15) * time.Second

	repeatNumber = 5
)

type client interface {
	Fetch(ctx context.Context, lat, lon float64, start, end time.Time) (HourlySeries, error)
}

// BreakerClient stops hammering the upstream API after repeated consecutive
// failures. A tripped breaker fails the fetch the same way a transport error
// does; nothing is retried.
type BreakerClient struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped client
}

func NewBreakerClient(name string, wrapped client) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    timeInterval,
		Timeout:     timeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= repeatNumber
		},
	}
	return &BreakerClient{
		name:    name,
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

func (b *BreakerClient) Fetch(
	ctx context.Context, lat, lon float64, start, end time.Time,
) (HourlySeries, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.wrapped.Fetch(ctx, lat, lon, start, end)
	})
	if err != nil {
		return HourlySeries{}, &FetchError{Err: err}
	}
	res, ok := result.(HourlySeries)
	if !ok {
		return HourlySeries{}, &FetchError{Err: errUnexpectedResult}
	}
	return res, nil
}
