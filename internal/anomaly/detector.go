// Package anomaly flags suspicious transactions. Three independent rules
// run per row and their verdicts are unioned: a per-category 2-sigma
// outlier test, a mean-ratio out-of-pattern test, and exact-duplicate
// detection on the (date, amount, description) triple.
package anomaly

import (
	"math"
	"strconv"
	"strings"

	"github.com/dvloznov/expense-insights/internal/domain"
)

// Reason tags, applied in rule order and joined with "; ".
const (
	ReasonStatisticalOutlier = "Statistical outlier"
	ReasonOutOfPattern       = "Out-of-pattern spending"
	ReasonDuplicateEntry     = "Duplicate entry"
)

const reasonSeparator = "; "

// Stats is the per-category amount distribution used by the statistical
// rules. Stddev is the sample standard deviation (n-1 denominator) and is 0
// for categories with fewer than two rows.
type Stats struct {
	Mean   float64
	Stddev float64
	Count  int
}

// Detect evaluates all three rules over the table and fills the anomaly
// columns. Statistics are computed fresh from the table on every call, so
// re-running after edits always reflects the current data. Fails with a
// SchemaError when category, amount, date or description is absent.
func Detect(table *domain.Table) (*domain.Table, error) {
	required := []string{domain.ColCategory, domain.ColAmount, domain.ColDate, domain.ColDescription}
	if err := domain.NewSchemaError("detect", table.MissingColumns(required...)); err != nil {
		return nil, err
	}

	stats := CategoryStats(table)
	dupes := duplicateTriples(table)

	for i := range table.Rows {
		row := &table.Rows[i]
		st := stats[row.Category]

		var reasons []string
		if st.Stddev > 0 && math.Abs(row.Amount-st.Mean) > 2*st.Stddev {
			reasons = append(reasons, ReasonStatisticalOutlier)
		}
		if row.Amount > 1.5*st.Mean || row.Amount < 0.5*st.Mean {
			reasons = append(reasons, ReasonOutOfPattern)
		}
		if dupes[tripleKey(row)] > 1 {
			reasons = append(reasons, ReasonDuplicateEntry)
		}

		row.Anomaly = len(reasons) > 0
		row.AnomalyReason = strings.Join(reasons, reasonSeparator)
	}

	table.AddColumn(domain.ColAnomaly)
	table.AddColumn(domain.ColAnomalyReason)
	return table, nil
}

// CategoryStats computes mean and sample standard deviation of amounts per
// category over the current table.
func CategoryStats(table *domain.Table) map[string]Stats {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range table.Rows {
		cat := table.Rows[i].Category
		sums[cat] += table.Rows[i].Amount
		counts[cat]++
	}

	stats := make(map[string]Stats, len(sums))
	for cat, sum := range sums {
		stats[cat] = Stats{Mean: sum / float64(counts[cat]), Count: counts[cat]}
	}

	// Second pass for the spread; single-sample categories keep stddev 0.
	squares := make(map[string]float64)
	for i := range table.Rows {
		cat := table.Rows[i].Category
		d := table.Rows[i].Amount - stats[cat].Mean
		squares[cat] += d * d
	}
	for cat, ss := range squares {
		st := stats[cat]
		if st.Count >= 2 {
			st.Stddev = math.Sqrt(ss / float64(st.Count-1))
		}
		stats[cat] = st
	}
	return stats
}

// duplicateTriples counts occurrences of each (date, amount, description)
// triple. Every row of a duplicated triple is flagged, first occurrence
// included.
func duplicateTriples(table *domain.Table) map[string]int {
	counts := make(map[string]int, table.Len())
	for i := range table.Rows {
		counts[tripleKey(&table.Rows[i])]++
	}
	return counts
}

func tripleKey(tx *domain.Transaction) string {
	return tx.Date.Format("2006-01-02") + "\x1f" +
		strconv.FormatFloat(tx.Amount, 'g', -1, 64) + "\x1f" +
		tx.Description
}
