package models

// IngestSummary is the JSON body returned on a successful weather-report.
// Failed runs are reported as a plain status/message pair by the handler.
type IngestSummary struct {
	Status       string  `json:"status"`
	Message      string  `json:"message"`
	RecordsCount int     `json:"records_count"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	DateRange    string  `json:"date_range"`
}
