package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
)

const summaryText = "This report presents an analysis of meteorological conditions for the " +
	"specified coordinates over a 48-hour observation period. The data includes temperature " +
	"variations and relative humidity measurements collected at hourly intervals, providing " +
	"insights into local weather patterns and environmental conditions."

// reportMeta is the template data for the PDF report. The chart travels as a
// base64 inline image, decoded again at embed time.
type reportMeta struct {
	Latitude    string
	Longitude   string
	DateRange   string
	Records     int
	ChartB64    string
	GeneratedAt string
}

func buildReportMeta(obs []models.Observation, times []time.Time, chartPNG []byte, now time.Time) reportMeta {
	first := obs[0]
	return reportMeta{
		Latitude:    formatLatitude(first.Latitude),
		Longitude:   formatLongitude(first.Longitude),
		DateRange:   times[0].Format(displayLayout) + " to " + times[len(times)-1].Format(displayLayout),
		Records:     len(obs),
		ChartB64:    base64.StdEncoding.EncodeToString(chartPNG),
		GeneratedAt: now.UTC().Format(displayLayout) + " UTC",
	}
}

func formatLatitude(lat float64) string {
	hemi := "N"
	if lat < 0 {
		hemi = "S"
	}
	return fmt.Sprintf("%.4f° %s", math.Abs(lat), hemi)
}

func formatLongitude(lon float64) string {
	hemi := "E"
	if lon < 0 {
		hemi = "W"
	}
	return fmt.Sprintf("%.4f° %s", math.Abs(lon), hemi)
}

// buildPDF lays out the report: title block, metadata rows, embedded chart and
// a boilerplate footer.
func buildPDF(meta reportMeta) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Weather Data Report", true)
	// Core fonts are cp1252; the translator keeps the degree sign intact.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "Weather Data Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(127, 140, 141)
	pdf.CellFormat(0, 8, "Meteorological Analysis and Trends - Last 48 Hours", "", 1, "C", false, 0, "")
	pdf.SetTextColor(44, 62, 80)
	pdf.Ln(4)
	pdf.SetDrawColor(52, 73, 94)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(6)

	metaRow(pdf, "Latitude", tr(meta.Latitude))
	metaRow(pdf, "Longitude", tr(meta.Longitude))
	metaRow(pdf, "Date Range", meta.DateRange)
	metaRow(pdf, "Data Points", fmt.Sprintf("%d records", meta.Records))
	metaRow(pdf, "Data Source", "Open-Meteo API")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, summaryText, "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Meteorological Trends", "", 1, "L", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	reader := base64.NewDecoder(base64.StdEncoding, strings.NewReader(meta.ChartB64))
	pdf.RegisterImageOptionsReader("weather-chart", opts, reader)
	pdf.ImageOptions("weather-chart", 15, pdf.GetY(), 180, 0, true, opts, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 5, "Weather Export API | Automated Report Generation", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Data provided by the Open-Meteo Weather Service", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Generated: "+meta.GeneratedAt, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func metaRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}
