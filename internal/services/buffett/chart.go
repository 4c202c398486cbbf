package buffett

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/borsa/internal/models"
)

// RenderDCFChart renders a PNG of the DCF projection.
// Two series: Projected Owner Earnings (blue solid) and Present Value (gray dashed).
func RenderDCFChart(symbol string, dcf *models.DCFResult) ([]byte, error) {
	if dcf == nil || len(dcf.Projections) < 2 {
		return nil, fmt.Errorf("need at least 2 projected years to chart")
	}

	years := make([]float64, len(dcf.Projections))
	projected := make([]float64, len(dcf.Projections))
	discounted := make([]float64, len(dcf.Projections))

	for i, p := range dcf.Projections {
		years[i] = float64(p.Year)
		projected[i] = p.CashFlow
		discounted[i] = p.PresentValue
	}

	projectedSeries := chart.ContinuousSeries{
		Name: "Projected Owner Earnings",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: years,
		YValues: projected,
	}

	discountedSeries := chart.ContinuousSeries{
		Name: "Present Value",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: years,
		YValues: discounted,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s DCF (r_real %.2f%%, IV %.0fM)", symbol, dcf.Parameters.RealDiscountRate*100, dcf.IntrinsicValueTotal),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("Y%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fM", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			projectedSeries,
			discountedSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
