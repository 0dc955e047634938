package normalize

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/dvloznov/expense-insights/internal/domain"
)

func rawTable(header []string, records ...[]string) *domain.RawTable {
	return &domain.RawTable{Header: header, Records: records}
}

func TestCleanMissingColumnsFails(t *testing.T) {
	raw := rawTable([]string{"date", "amount"}, []string{"2024-01-01", "10"})

	_, _, err := Clean(raw)
	if err == nil {
		t.Fatal("Expected SchemaError for missing description column")
	}

	var schemaErr *domain.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected *domain.SchemaError, got %T: %v", err, err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != "description" {
		t.Errorf("Expected missing [description], got %v", schemaErr.Missing)
	}
}

func TestCleanHeaderMatchingIsCaseInsensitive(t *testing.T) {
	raw := rawTable(
		[]string{" Date ", "AMOUNT", "Description"},
		[]string{"2024-01-01", "10", "Coffee"},
	)

	table, stats, err := Clean(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("Expected 1 row, got %d", table.Len())
	}
	if stats.Total() != 0 {
		t.Errorf("Expected no drops, got %+v", stats)
	}
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"ISO", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"SlashDMY", "15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"DashDMY", "15-03-2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"SlashDMYShort", "15/03/24", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"FallbackDateTime", "2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"FallbackTextual", "15 Mar 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDate(tc.value)
			if !ok {
				t.Fatalf("ParseDate(%q) failed", tc.value)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

// A value whose shape matches a priority pattern must be parsed with that
// pattern's layout, day-first, even when another layout would also accept it.
func TestParseDateShapeSelectsFormat(t *testing.T) {
	got, ok := ParseDate("01/02/2003")
	if !ok {
		t.Fatal("ParseDate failed")
	}
	want := time.Date(2003, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected day-first parse %v, got %v", want, got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "not a date", "99/99/9999", "2024-13-45"} {
		if _, ok := ParseDate(value); ok {
			t.Errorf("ParseDate(%q) should have failed", value)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		value string
		want  float64
		ok    bool
	}{
		{"10.50", 10.50, true},
		{"$1,234.56", 1234.56, true},
		{"€ 99", 99, true},
		{" 42 ", 42, true},
		{"-12.00", -12, true},
		{"abc", 0, false},
		{"$", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		got, ok := ParseAmount(tc.value)
		if ok != tc.ok {
			t.Errorf("ParseAmount(%q) ok = %v, want %v", tc.value, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestCleanDropsAndCounts(t *testing.T) {
	raw := rawTable(
		[]string{"date", "amount", "description"},
		[]string{"2024-01-01", "10", "Coffee"},
		[]string{"", "10", "missing date"},
		[]string{"2024-01-02", "", "missing amount"},
		[]string{"2024-01-03", "10", "   "},
		[]string{"complete nonsense", "10", "bad date"},
		[]string{"2024-01-04", "ten", "bad amount"},
		[]string{"2024-01-05", "$1,000.00", "Dinner  "},
	)

	table, stats, err := Clean(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("Expected 2 surviving rows, got %d", table.Len())
	}
	if stats.MissingRequired != 3 {
		t.Errorf("Expected 3 missing-value drops, got %d", stats.MissingRequired)
	}
	if stats.BadDate != 1 {
		t.Errorf("Expected 1 bad-date drop, got %d", stats.BadDate)
	}
	if stats.BadAmount != 1 {
		t.Errorf("Expected 1 bad-amount drop, got %d", stats.BadAmount)
	}
	if stats.Total() != 5 {
		t.Errorf("Expected 5 total drops, got %d", stats.Total())
	}

	// Survivor order and cleaning.
	first, second := table.Rows[0], table.Rows[1]
	if first.Description != "coffee" {
		t.Errorf("Expected lowercased description, got %q", first.Description)
	}
	if second.Description != "dinner" {
		t.Errorf("Expected trimmed lowercased description, got %q", second.Description)
	}
	if second.Amount != 1000 {
		t.Errorf("Expected cleaned amount 1000, got %v", second.Amount)
	}
}

func TestCleanPassesThroughExtraColumns(t *testing.T) {
	raw := rawTable(
		[]string{"date", "amount", "description", "account", "note"},
		[]string{"2024-01-01", "10", "Coffee", "ACC-1", "morning"},
	)

	table, _, err := Clean(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	wantColumns := []string{"date", "amount", "description", "account", "note"}
	gotColumns := table.Columns()
	if len(gotColumns) != len(wantColumns) {
		t.Fatalf("Expected columns %v, got %v", wantColumns, gotColumns)
	}
	for i := range wantColumns {
		if gotColumns[i] != wantColumns[i] {
			t.Fatalf("Expected columns %v, got %v", wantColumns, gotColumns)
		}
	}

	row := table.Rows[0]
	if row.Extra["account"] != "ACC-1" || row.Extra["note"] != "morning" {
		t.Errorf("Expected passthrough values, got %v", row.Extra)
	}
}

// Normalizing an already-clean table must not change it.
func TestCleanIdempotent(t *testing.T) {
	raw := rawTable(
		[]string{"date", "amount", "description"},
		[]string{"2024-01-01", "10.5", "coffee"},
		[]string{"2024-02-01", "1000", "rent"},
	)

	once, _, err := Clean(raw)
	if err != nil {
		t.Fatalf("First clean failed: %v", err)
	}

	// Round-trip the clean table back through string form.
	again := &domain.RawTable{Header: []string{"date", "amount", "description"}}
	for _, row := range once.Rows {
		again.Records = append(again.Records, []string{
			row.Date.Format("2006-01-02"),
			strconv.FormatFloat(row.Amount, 'f', -1, 64),
			row.Description,
		})
	}

	twice, stats, err := Clean(again)
	if err != nil {
		t.Fatalf("Second clean failed: %v", err)
	}
	if stats.Total() != 0 {
		t.Errorf("Expected no drops on clean input, got %+v", stats)
	}
	if twice.Len() != once.Len() {
		t.Fatalf("Expected %d rows, got %d", once.Len(), twice.Len())
	}
	for i := range once.Rows {
		a, b := once.Rows[i], twice.Rows[i]
		if !a.Date.Equal(b.Date) || a.Amount != b.Amount || a.Description != b.Description {
			t.Errorf("Row %d changed: %+v vs %+v", i, a, b)
		}
	}
}
