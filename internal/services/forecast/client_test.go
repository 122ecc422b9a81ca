//go:build unit

package forecast_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladyslav-tk/weather-export-api/internal/services/forecast"
)

type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

var (
	fetchStart = time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	fetchEnd   = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
)

func TestFetch(t *testing.T) {
	mockClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "40", q.Get("latitude"))
			assert.Equal(t, "-74", q.Get("longitude"))
			assert.Equal(t, "2025-06-13", q.Get("start_date"))
			assert.Equal(t, "2025-06-15", q.Get("end_date"))
			assert.Equal(t, "temperature_2m,relative_humidity_2m", q.Get("hourly"))
			assert.Equal(t, "auto", q.Get("timezone"))

			return &http.Response{
				StatusCode: http.StatusOK,
				Body: io.NopCloser(strings.NewReader(`{"hourly": {
					"time": ["2025-06-14T00:00", "2025-06-14T01:00", "2025-06-14T02:00"],
					"temperature_2m": [21.5, null, 19.0],
					"relative_humidity_2m": [55.0, 60.0, null]
				}}`)),
			}, nil
		},
	}

	client := forecast.NewClient("https://api.open-meteo.com/v1/forecast", mockClient, log.Default())

	series, err := client.Fetch(context.Background(), 40, -74, fetchStart, fetchEnd)
	require.NoError(t, err)

	require.Len(t, series.Time, 3)
	require.Len(t, series.Temperature, 3)
	require.Len(t, series.Humidity, 3)

	assert.Equal(t, "2025-06-14T00:00", series.Time[0])
	require.NotNil(t, series.Temperature[0])
	assert.Equal(t, 21.5, *series.Temperature[0])
	assert.Nil(t, series.Temperature[1])
	assert.Nil(t, series.Humidity[2])
}

func TestFetch_UpstreamStatusError(t *testing.T) {
	mockClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Status:     "503 Service Unavailable",
				Body:       io.NopCloser(strings.NewReader(`{"reason": "down"}`)),
			}, nil
		},
	}

	client := forecast.NewClient("https://api.open-meteo.com/v1/forecast", mockClient, log.Default())

	_, err := client.Fetch(context.Background(), 40, -74, fetchStart, fetchEnd)
	require.Error(t, err)

	var fErr *forecast.FetchError
	assert.True(t, errors.As(err, &fErr))
	assert.Contains(t, err.Error(), "503")
}

func TestFetch_TransportError(t *testing.T) {
	mockClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	client := forecast.NewClient("https://api.open-meteo.com/v1/forecast", mockClient, log.Default())

	_, err := client.Fetch(context.Background(), 40, -74, fetchStart, fetchEnd)
	require.Error(t, err)

	var fErr *forecast.FetchError
	assert.True(t, errors.As(err, &fErr))
}

func TestFetch_MalformedJSON(t *testing.T) {
	mockClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`not json`)),
			}, nil
		},
	}

	client := forecast.NewClient("https://api.open-meteo.com/v1/forecast", mockClient, log.Default())

	_, err := client.Fetch(context.Background(), 40, -74, fetchStart, fetchEnd)

	var fErr *forecast.FetchError
	assert.True(t, errors.As(err, &fErr))
}
