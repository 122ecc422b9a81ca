package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vladyslav-tk/weather-export-api/internal/config"
	exporthandler "github.com/vladyslav-tk/weather-export-api/internal/handlers/export"
	weatherhandler "github.com/vladyslav-tk/weather-export-api/internal/handlers/weather"
	"github.com/vladyslav-tk/weather-export-api/internal/metrics"
	"github.com/vladyslav-tk/weather-export-api/internal/repository"
	"github.com/vladyslav-tk/weather-export-api/internal/services/export"
	"github.com/vladyslav-tk/weather-export-api/internal/services/forecast"
	"github.com/vladyslav-tk/weather-export-api/internal/services/ingest"
	"github.com/vladyslav-tk/weather-export-api/internal/services/logger"

	_ "modernc.org/sqlite"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

type App struct {
	cfg config.Config
	log *log.Logger
}

type ServiceContainer struct {
	Repository    *repository.ObservationRepository
	IngestService ingest.Pipeline
	ExportService export.Renderer
	Metrics       *metrics.Metrics

	Router *gin.Engine
	Srv    *http.Server
	Db     *sql.DB
}

func New(cfg config.Config, logger *log.Logger) *App {
	return &App{
		cfg: cfg,
		log: logger,
	}
}

func (a *App) Init() ServiceContainer {
	db, err := CreateSqliteDb(a.cfg.DB)
	if err != nil {
		a.log.Panic(err)
	}

	if err := InitSqliteDb(db, a.cfg.DB.Dialect, a.cfg.DB.MigrationsPath); err != nil {
		a.log.Panic(err)
	}

	router := gin.Default()

	apiServer := &http.Server{
		Addr:        a.cfg.Server.Address,
		Handler:     router,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	m := metrics.NewMetrics("weather_export", db, a.cfg.DB.Name)
	router.Use(m.HTTPMiddleware())

	fileLogger, err := newFileLogger(a.cfg.LogsPath)
	if err != nil {
		a.log.Panicf("failed to create file logger: %v", err)
	}

	httpLogClient := &http.Client{
		Transport: logger.NewRoundTripper(fileLogger),
		Timeout:   a.cfg.OpenMeteo.Timeout(),
	}

	clock := clockwork.NewRealClock()

	forecastClient := forecast.NewMetricsDecorator(
		forecast.NewBreakerClient("open-meteo",
			forecast.NewClient(a.cfg.OpenMeteo.BaseURL, httpLogClient, a.log)),
		m,
	)

	repo := repository.NewObservationRepository(db, clock, a.log)

	ingestService := ingest.NewMetricsDecorator(
		ingest.NewService(forecastClient, repo, clock, a.log, a.cfg.OpenMeteo.DaysToFetch),
		m,
	)
	exportService := export.NewMetricsDecorator(
		export.NewService(repo, clock, a.log, a.cfg.Export.Dir),
		m,
	)

	return ServiceContainer{
		Repository:    repo,
		IngestService: ingestService,
		ExportService: exportService,
		Metrics:       m,

		Router: router,
		Srv:    apiServer,
		Db:     db,
	}
}

func (a *App) Start(srvContainer ServiceContainer) error {
	a.log.Println("Starting server on", a.cfg.Server.Address)

	a.RegisterRoutes(srvContainer)

	if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) RegisterRoutes(srvContainer ServiceContainer) {
	weatherHandler := weatherhandler.NewHandler(srvContainer.IngestService)
	exportHandler := exporthandler.NewHandler(srvContainer.ExportService)

	srvContainer.Router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Weather Export API is running",
			"status":  "operational",
			"endpoints": gin.H{
				"health_check":   "/health",
				"weather_report": "/weather-report?lat=LAT&lon=LON",
				"export_excel":   "/export/excel",
				"export_pdf":     "/export/pdf",
			},
		})
	})
	srvContainer.Router.GET("/weather-report", weatherHandler.WeatherReport)
	srvContainer.Router.GET("/export/excel", exportHandler.Excel)
	srvContainer.Router.GET("/export/pdf", exportHandler.PDF)
	srvContainer.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "weather-export-api"})
	})
	srvContainer.Router.GET("/metrics", srvContainer.Metrics.Handler())
}

func (a *App) Stop(srvContainer ServiceContainer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		return err
	}
	return srvContainer.Db.Close()
}

// CreateSqliteDb opens the store and pings it with a bounded fixed-delay
// retry; the process refuses to start if the storage engine stays unreachable.
func CreateSqliteDb(cfg config.Db) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.Source)
	if err != nil {
		return nil, err
	}

	// Single writer connection; concurrent requests queue on the pool instead
	// of tripping SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	backoff := retry.WithMaxRetries(uint64(cfg.ConnectRetries), retry.NewConstant(cfg.RetryDelay()))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func InitSqliteDb(db *sql.DB, dialect, migrationsPath string) error {
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	return goose.Up(db, migrationsPath)
}

func newFileLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, err
	}

	writer := zapcore.AddSync(file)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		writer,
		zap.InfoLevel,
	)
	return zap.New(core), nil
}
