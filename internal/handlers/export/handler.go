package export

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
	"github.com/vladyslav-tk/weather-export-api/internal/services/export"
)

type Exporter interface {
	Excel(ctx context.Context, coord *models.Coordinate) (export.Artifact, error)
	PDF(ctx context.Context, coord *models.Coordinate) (export.Artifact, error)
}

type Handler struct {
	Service Exporter
}

func NewHandler(svc Exporter) *Handler {
	return &Handler{Service: svc}
}

// Excel streams the tabular spreadsheet export as an attachment.
func (h *Handler) Excel(c *gin.Context) {
	coord, ok := parseCoordinate(c)
	if !ok {
		return
	}
	h.send(c, "excel", "Excel file generated successfully", func(ctx context.Context) (export.Artifact, error) {
		return h.Service.Excel(ctx, coord)
	})
}

// PDF streams the charted report export as an attachment.
func (h *Handler) PDF(c *gin.Context) {
	coord, ok := parseCoordinate(c)
	if !ok {
		return
	}
	h.send(c, "pdf", "PDF report generated successfully with charts", func(ctx context.Context) (export.Artifact, error) {
		return h.Service.PDF(ctx, coord)
	})
}

func (h *Handler) send(
	c *gin.Context, kind, message string,
	generate func(ctx context.Context) (export.Artifact, error),
) {
	artifact, err := generate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  kind + " export failed: " + err.Error(),
			"status": "error",
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	c.Header("X-Export-Status", "success")
	c.Header("X-Export-Message", message)
	c.Header("X-Export-Type", kind)
	c.Header("X-File-Size", strconv.Itoa(len(artifact.Data)))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// parseCoordinate reads the optional lat/lon pair. Supplying only one of the
// two, or a non-numeric value, is rejected; supplying neither selects the most
// recently ingested location downstream.
func parseCoordinate(c *gin.Context) (*models.Coordinate, bool) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" && lonStr == "" {
		return nil, true
	}
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "lat and lon must be supplied together",
			"status": "error",
		})
		return nil, false
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid latitude or longitude values - must be numbers",
			"status": "error",
		})
		return nil, false
	}

	return &models.Coordinate{Latitude: lat, Longitude: lon}, true
}
