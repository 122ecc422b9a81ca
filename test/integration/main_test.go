//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vladyslav-tk/weather-export-api/internal/app"
	"github.com/vladyslav-tk/weather-export-api/internal/config"
)

const seriesLen = 48

var testServerURL string

// upstreamHandler serves a synthetic Open-Meteo hourly payload: 48 hourly
// readings ending at the current hour, with one null temperature so the
// null-coercion path is exercised end to end.
func upstreamHandler(w http.ResponseWriter, r *http.Request) {
	end := time.Now().Truncate(time.Hour)

	payload := struct {
		Hourly struct {
			Time        []string   `json:"time"`
			Temperature []*float64 `json:"temperature_2m"`
			Humidity    []*float64 `json:"relative_humidity_2m"`
		} `json:"hourly"`
	}{}

	for i := 0; i < seriesLen; i++ {
		ts := end.Add(time.Duration(i-seriesLen+1) * time.Hour)
		payload.Hourly.Time = append(payload.Hourly.Time, ts.Format("2006-01-02T15:04"))

		if i == 0 {
			payload.Hourly.Temperature = append(payload.Hourly.Temperature, nil)
		} else {
			temp := 15.0 + float64(i%10)
			payload.Hourly.Temperature = append(payload.Hourly.Temperature, &temp)
		}
		hum := 40.0 + float64(i%25)
		payload.Hourly.Humidity = append(payload.Hourly.Humidity, &hum)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println("failed to encode upstream payload:", err)
	}
}

func TestMain(m *testing.M) {
	fmt.Println("Starting integration tests...")

	upstream := httptest.NewServer(http.HandlerFunc(upstreamHandler))

	tmpDir, err := os.MkdirTemp("", "weather-export-api")
	if err != nil {
		log.Panicf("failed to create temp dir: %v", err)
	}

	os.Setenv("OPEN_METEO_URL", upstream.URL)
	os.Setenv("DB_SOURCE", "file:"+filepath.Join(tmpDir, "weather_test.db"))
	os.Setenv("DB_MIGRATIONS_DIR", "../../migrations")
	os.Setenv("EXPORT_DIR", filepath.Join(tmpDir, "exports"))
	os.Setenv("LOGS_PATH", filepath.Join(tmpDir, "logs", "upstream.log"))

	cfg, err := config.New()
	if err != nil {
		log.Panicf("failed to load config: %v", err)
	}

	application := app.New(*cfg, log.Default())
	srvContainer := application.Init()

	if srvContainer.Db == nil {
		log.Panic("Database is not initialized")
	}
	if err := srvContainer.Db.Ping(); err != nil {
		log.Panicf("failed to connect to the database: %v", err)
	}

	application.RegisterRoutes(srvContainer)

	testServer := httptest.NewServer(srvContainer.Router)
	testServerURL = testServer.URL

	code := m.Run()

	testServer.Close()
	upstream.Close()
	if err := srvContainer.Db.Close(); err != nil {
		log.Println("failed to close database:", err)
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		log.Println("failed to remove temp dir:", err)
	}

	os.Exit(code)
}
