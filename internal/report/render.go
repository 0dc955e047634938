package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// RenderSummary writes the category summary as an ASCII table.
func RenderSummary(w io.Writer, summary []CategorySummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Total", "%", "Anomalies"})
	for _, row := range summary {
		anomalies := ""
		if row.HasAnomalies {
			anomalies = "yes"
		}
		table.Append([]string{
			row.Category,
			formatAmount(row.TotalAmount),
			fmt.Sprintf("%.2f", row.Percentage),
			anomalies,
		})
	}
	table.Render()
}

// RenderTrend writes the monthly trend as an ASCII table.
func RenderTrend(w io.Writer, trend []MonthlyTotal) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Month", "Total"})
	for _, row := range trend {
		table.Append([]string{row.Month, formatAmount(row.TotalAmount)})
	}
	table.Render()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
