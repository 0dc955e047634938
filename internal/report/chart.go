package report

import (
	"fmt"
	"os"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// ErrNotEnoughTrendData is returned when the trend has fewer than two
// months; a single point does not make a line.
var ErrNotEnoughTrendData = fmt.Errorf("report: need at least two monthly data points for a chart")

// WriteTrendChart renders the monthly trend as a PNG line chart at path.
func WriteTrendChart(path string, trend []MonthlyTotal) error {
	if len(trend) < 2 {
		return ErrNotEnoughTrendData
	}

	xs := make([]time.Time, 0, len(trend))
	ys := make([]float64, 0, len(trend))
	for _, row := range trend {
		month, err := time.Parse("2006-01", row.Month)
		if err != nil {
			return fmt.Errorf("report: bad month label %q: %w", row.Month, err)
		}
		xs = append(xs, month)
		ys = append(ys, row.TotalAmount)
	}

	graph := chart.Chart{
		Title: "Monthly Spending",
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "total",
				XValues: xs,
				YValues: ys,
			},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("report: rendering chart: %w", err)
	}
	return nil
}
