package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const dateLayout = "2006-01-02"

// HourlySeries carries the raw parallel arrays from the upstream forecast API.
// Temperature and humidity entries are nil where the API returned null.
type HourlySeries struct {
	Time        []string
	Temperature []*float64
	Humidity    []*float64
}

// FetchError marks any transport, timeout or non-2xx failure against the
// upstream API. There is no retry at this layer.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "failed to fetch weather data: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	client  HTTPClient
	logger  *log.Logger
}

func NewClient(baseURL string, httpClient HTTPClient, logger *log.Logger) *Client {
	return &Client{baseURL: baseURL, client: httpClient, logger: logger}
}

// Fetch requests hourly temperature and humidity for the coordinate between
// the two dates, inclusive.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, start, end time.Time) (HourlySeries, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%v", lat))
	values.Set("longitude", fmt.Sprintf("%v", lon))
	values.Set("start_date", start.Format(dateLayout))
	values.Set("end_date", end.Format(dateLayout))
	values.Set("hourly", "temperature_2m,relative_humidity_2m")
	values.Set("timezone", "auto")

	reqURL := c.baseURL + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return HourlySeries{}, &FetchError{Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return HourlySeries{}, &FetchError{Err: err}
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Println("failed to close response body:", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return HourlySeries{}, &FetchError{Err: fmt.Errorf("upstream API error: status %s", resp.Status)}
	}

	var raw struct {
		Hourly struct {
			Time        []string   `json:"time"`
			Temperature []*float64 `json:"temperature_2m"`
			Humidity    []*float64 `json:"relative_humidity_2m"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return HourlySeries{}, &FetchError{Err: fmt.Errorf("decode upstream response: %w", err)}
	}

	return HourlySeries{
		Time:        raw.Hourly.Time,
		Temperature: raw.Hourly.Temperature,
		Humidity:    raw.Hourly.Humidity,
	}, nil
}
