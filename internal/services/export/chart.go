package export

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/vladyslav-tk/weather-export-api/internal/models"
)

const (
	chartWidth    = 1200
	panelHeight   = 400
	tickInterval  = 6 * time.Hour
	tickLayout    = "01-02 15:04"
	labelRotation = 45.0
	strokeWidth   = 2.0
)

// renderChart draws temperature and humidity as two stacked panels sharing the
// same time axis and returns the combined PNG.
func renderChart(times []time.Time, obs []models.Observation) ([]byte, error) {
	temps := make([]float64, len(obs))
	hums := make([]float64, len(obs))
	for i, o := range obs {
		temps[i] = o.Temperature
		hums[i] = o.Humidity
	}

	top, err := renderPanel("Temperature Over Time", "Temperature (°C)", chart.ColorRed, times, temps)
	if err != nil {
		return nil, err
	}
	bottom, err := renderPanel("Humidity Over Time", "Relative Humidity (%)", chart.ColorBlue, times, hums)
	if err != nil {
		return nil, err
	}

	return stackPanels(top, bottom)
}

func renderPanel(title, axisName string, color drawing.Color, times []time.Time, values []float64) ([]byte, error) {
	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: panelHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(tickLayout),
			TickStyle:      chart.Style{TextRotationDegrees: labelRotation},
			Ticks:          timeTicks(times),
		},
		YAxis: chart.YAxis{
			Name: axisName,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: title,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: strokeWidth,
				},
				XValues: times,
				YValues: values,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// timeTicks places an axis tick every six hours across the observed span.
func timeTicks(times []time.Time) []chart.Tick {
	if len(times) == 0 {
		return nil
	}
	first := times[0].Truncate(tickInterval)
	last := times[len(times)-1]

	var ticks []chart.Tick
	for t := first; !t.After(last); t = t.Add(tickInterval) {
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: t.Format(tickLayout),
		})
	}
	if len(ticks) < 2 {
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(last.Add(tickInterval)),
			Label: last.Add(tickInterval).Format(tickLayout),
		})
	}
	return ticks
}

// stackPanels composes the two panel images vertically into one PNG.
func stackPanels(top, bottom []byte) ([]byte, error) {
	topImg, err := png.Decode(bytes.NewReader(top))
	if err != nil {
		return nil, err
	}
	bottomImg, err := png.Decode(bytes.NewReader(bottom))
	if err != nil {
		return nil, err
	}

	tb := topImg.Bounds()
	bb := bottomImg.Bounds()
	width := tb.Dx()
	if bb.Dx() > width {
		width = bb.Dx()
	}

	combined := image.NewRGBA(image.Rect(0, 0, width, tb.Dy()+bb.Dy()))
	draw.Draw(combined, combined.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(combined, image.Rect(0, 0, tb.Dx(), tb.Dy()), topImg, tb.Min, draw.Src)
	draw.Draw(combined, image.Rect(0, tb.Dy(), bb.Dx(), tb.Dy()+bb.Dy()), bottomImg, bb.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, combined); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
