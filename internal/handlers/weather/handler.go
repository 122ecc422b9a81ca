package weather

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
	"github.com/vladyslav-tk/weather-export-api/internal/services/ingest"
)

type Ingester interface {
	Ingest(ctx context.Context, lat, lon float64) (models.IngestSummary, error)
}

type Handler struct {
	Service Ingester
}

func NewHandler(svc Ingester) *Handler {
	return &Handler{Service: svc}
}

// WeatherReport fetches the configured window of hourly weather for the given
// coordinate and stores it. Validation failures are 400; fetch or store
// failures are 500 with a status/message body.
func (h *Handler) WeatherReport(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Both lat and lon parameters are required",
			"status": "error",
		})
		return
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid latitude or longitude values - must be numbers",
			"status": "error",
		})
		return
	}

	summary, err := h.Service.Ingest(c.Request.Context(), lat, lon)
	if err != nil {
		var vErr *ingest.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  vErr.Message,
				"status": "error",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}
