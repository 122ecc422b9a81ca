package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/vladyslav-tk/weather-export-api/internal/app"
	"github.com/vladyslav-tk/weather-export-api/internal/config"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.New()
	if err != nil {
		log.Panic(err)
	}

	logger := log.New(log.Writer(), "WeatherExportAPI: ", log.LstdFlags)

	application := app.New(*cfg, logger)
	srvContainer := application.Init()

	defer func() {
		if err := application.Stop(srvContainer); err != nil {
			logger.Panicf("failed to shutdown application: %v", err)
		}
		logger.Println("Application shutdown successfully")
	}()

	if err := application.Start(srvContainer); err != nil {
		logger.Panic(err)
	}
}
