package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
)

const (
	sheetName = "Weather Data"

	maxColumnWidth = 50
	widthPadding   = 2
)

var columnHeaders = []string{
	"timestamp", "latitude", "longitude", "temperature_celsius", "relative_humidity_percent",
}

// buildWorkbook writes the observations into a single sheet with column widths
// sized to content, capped for readability.
func buildWorkbook(obs []models.Observation) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		// Close only releases in-memory resources here; the workbook is
		// already serialized by then.
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	widths := make([]int, len(columnHeaders))
	for i, h := range columnHeaders {
		widths[i] = len(h)
	}

	header := make([]interface{}, len(columnHeaders))
	for i, h := range columnHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, o := range obs {
		values := []interface{}{o.Timestamp, o.Latitude, o.Longitude, o.Temperature, o.Humidity}
		for col, v := range values {
			if l := len(fmt.Sprintf("%v", v)); l > widths[col] {
				widths[col] = l
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		width := w + widthPadding
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(sheetName, name, name, float64(width)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
