// Package report aggregates an annotated transaction table into a
// per-category summary and a monthly spending trend, and renders both as
// text tables or a line chart.
package report

import (
	"math"
	"sort"

	"github.com/dvloznov/expense-insights/internal/domain"
)

// CategorySummary is one row of the per-category report.
type CategorySummary struct {
	Category     string
	TotalAmount  float64
	Percentage   float64 // of grand total, 2 decimals; 0 when grand total <= 0
	HasAnomalies bool
}

// MonthlyTotal is one row of the monthly trend, labeled "YYYY-MM".
type MonthlyTotal struct {
	Month       string
	TotalAmount float64
}

// Summarize computes the category summary (sorted by total descending, ties
// alphabetical) and the monthly trend (sorted by month ascending). Rows
// without a usable date are ignored for aggregation; the caller's table is
// not modified. Fails with a SchemaError when category, amount or date is
// absent.
func Summarize(table *domain.Table) ([]CategorySummary, []MonthlyTotal, error) {
	required := []string{domain.ColCategory, domain.ColAmount, domain.ColDate}
	if err := domain.NewSchemaError("summarize", table.MissingColumns(required...)); err != nil {
		return nil, nil, err
	}

	hasAnomalyColumn := table.HasColumn(domain.ColAnomaly)

	totals := make(map[string]float64)
	anomalous := make(map[string]bool)
	months := make(map[string]float64)

	for i := range table.Rows {
		row := &table.Rows[i]
		if row.Date.IsZero() {
			continue
		}

		totals[row.Category] += row.Amount
		if hasAnomalyColumn && row.Anomaly {
			anomalous[row.Category] = true
		}
		months[row.Date.Format("2006-01")] += row.Amount
	}

	var grandTotal float64
	for _, total := range totals {
		grandTotal += total
	}

	summary := make([]CategorySummary, 0, len(totals))
	for category, total := range totals {
		row := CategorySummary{
			Category:     category,
			TotalAmount:  total,
			HasAnomalies: anomalous[category],
		}
		if grandTotal > 0 {
			row.Percentage = round2(total / grandTotal * 100)
		}
		summary = append(summary, row)
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].TotalAmount != summary[j].TotalAmount {
			return summary[i].TotalAmount > summary[j].TotalAmount
		}
		return summary[i].Category < summary[j].Category
	})

	trend := make([]MonthlyTotal, 0, len(months))
	for month, total := range months {
		trend = append(trend, MonthlyTotal{Month: month, TotalAmount: total})
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Month < trend[j].Month
	})

	return summary, trend, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
