// Package normalize cleans raw ledger rows into typed transactions: dates
// parsed under multiple candidate formats, amounts stripped of currency
// decoration, descriptions lowercased. Rows that cannot be repaired are
// dropped, with per-cause counters so callers can see what was rejected.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/expense-insights/internal/domain"
)

// datePatterns pairs a structural match with the layout used to parse it.
// Selection is by full-string shape, in priority order: a value that looks
// like DD/MM/YYYY is never attempted against DD-MM-YYYY.
var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02"},
	{regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), "02/01/2006"},
	{regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`), "02-01-2006"},
	{regexp.MustCompile(`^\d{2}/\d{2}/\d{2}$`), "02/01/06"},
}

// fallbackLayouts is the best-effort net for values whose shape matches none
// of the priority patterns.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02.01.2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var amountCleaner = strings.NewReplacer("$", "", "€", "", ",", "")

// DropStats counts rows rejected during cleaning, by cause.
type DropStats struct {
	MissingRequired  int // blank date, amount or description before coercion
	BadDate          int // date survived the blank check but would not parse
	BadAmount        int // amount would not coerce to a number
	BlankDescription int // description empty after trimming
}

// Total returns the number of rows dropped across all causes.
func (s DropStats) Total() int {
	return s.MissingRequired + s.BadDate + s.BadAmount + s.BlankDescription
}

// Clean converts a raw table into a typed transaction table. It fails with a
// SchemaError if any of the date, amount or description columns are absent;
// individually broken rows are dropped and counted, never fatal. Survivor
// order matches the input order.
func Clean(raw *domain.RawTable) (*domain.Table, DropStats, error) {
	var stats DropStats

	required := []string{domain.ColDate, domain.ColAmount, domain.ColDescription}
	indices := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		idx := raw.ColumnIndex(name)
		if idx < 0 {
			missing = append(missing, name)
			continue
		}
		indices[name] = idx
	}
	if err := domain.NewSchemaError("normalize", missing); err != nil {
		return nil, stats, err
	}

	extras, extraIdx := passthroughColumns(raw, indices)

	columns := append([]string{domain.ColDate, domain.ColAmount, domain.ColDescription}, extras...)
	table := domain.NewTable(columns...)

	for _, rec := range raw.Records {
		rawDate := strings.TrimSpace(rec[indices[domain.ColDate]])
		rawAmount := strings.TrimSpace(rec[indices[domain.ColAmount]])
		rawDesc := rec[indices[domain.ColDescription]]

		if rawDate == "" || rawAmount == "" || strings.TrimSpace(rawDesc) == "" {
			stats.MissingRequired++
			continue
		}

		date, ok := ParseDate(rawDate)
		if !ok {
			stats.BadDate++
			continue
		}

		amount, ok := ParseAmount(rawAmount)
		if !ok {
			stats.BadAmount++
			continue
		}

		desc := strings.ToLower(strings.TrimSpace(rawDesc))
		if desc == "" {
			stats.BlankDescription++
			continue
		}

		tx := domain.Transaction{
			Date:        date,
			Amount:      amount,
			Description: desc,
		}
		if len(extras) > 0 {
			tx.Extra = make(map[string]string, len(extras))
			for k, name := range extras {
				tx.Extra[name] = rec[extraIdx[k]]
			}
		}
		table.Rows = append(table.Rows, tx)
	}

	return table, stats, nil
}

// ParseDate parses a date string. The first priority pattern whose literal
// shape fully matches the value selects the layout; if none match, each
// fallback layout is tried in turn.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, p := range datePatterns {
		if p.re.MatchString(value) {
			t, err := time.Parse(p.layout, value)
			if err != nil {
				return time.Time{}, false
			}
			return t, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount strips currency symbols, whitespace and thousands separators,
// then coerces the remainder to a float.
func ParseAmount(value string) (float64, bool) {
	cleaned := amountCleaner.Replace(value)
	cleaned = strings.Join(strings.Fields(cleaned), "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// passthroughColumns returns header names that are not one of the required
// columns, in source order, along with their record indices. Blank headers
// are skipped.
func passthroughColumns(raw *domain.RawTable, required map[string]int) ([]string, []int) {
	requiredIdx := make(map[int]bool, len(required))
	for _, idx := range required {
		requiredIdx[idx] = true
	}

	var extras []string
	var indices []int
	for i, name := range raw.Header {
		if requiredIdx[i] || strings.TrimSpace(name) == "" {
			continue
		}
		extras = append(extras, name)
		indices = append(indices, i)
	}
	return extras, indices
}
