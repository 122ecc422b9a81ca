package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Address     string `envconfig:"SERVER_ADDRESS" default:":8080"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
}

type Db struct {
	Dialect        string `envconfig:"DB_DIALECT" default:"sqlite3"`
	Source         string `envconfig:"DB_SOURCE" default:"file:weather_data.db?cache=shared&mode=rwc"`
	Name           string `envconfig:"DB_NAME" default:"weather_data.db"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_DIR" default:"./migrations"`
	ConnectRetries int    `envconfig:"DB_CONNECT_RETRIES" default:"5"`
	RetryDelaySec  int    `envconfig:"DB_RETRY_DELAY" default:"1"`
}

type OpenMeteo struct {
	BaseURL        string `envconfig:"OPEN_METEO_URL" default:"https://api.open-meteo.com/v1/forecast"`
	TimeoutSeconds int    `envconfig:"API_TIMEOUT" default:"30"`
	DaysToFetch    int    `envconfig:"DAYS_TO_FETCH" default:"2"`
}

type Export struct {
	Dir string `envconfig:"EXPORT_DIR" default:"exports"`
}

type Config struct {
	Server    Server
	DB        Db
	OpenMeteo OpenMeteo
	Export    Export

	LogsPath string `envconfig:"LOGS_PATH" default:"logs/upstream.log"`
}

func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (d *Db) RetryDelay() time.Duration {
	return time.Duration(d.RetryDelaySec) * time.Second
}

func (o *OpenMeteo) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}
