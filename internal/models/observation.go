package models

// Observation is one hourly weather reading for a coordinate.
// Timestamp keeps the upstream ISO-8601 local-time string (hourly granularity);
// RecordedAt is the store's RFC3339 insert time, also kept as text.
type Observation struct {
	ID          int64   `json:"-"`
	Timestamp   string  `json:"timestamp"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Temperature float64 `json:"temperature_celsius"`
	Humidity    float64 `json:"relative_humidity_percent"`
	RecordedAt  string  `json:"-"`
}

type Coordinate struct {
	Latitude  float64
	Longitude float64
}
