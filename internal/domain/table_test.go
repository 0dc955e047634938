package domain

import (
	"testing"
)

func TestTableColumns(t *testing.T) {
	table := NewTable(ColDate, ColAmount)

	if !table.HasColumn(ColDate) || table.HasColumn(ColCategory) {
		t.Error("Unexpected column membership")
	}

	table.AddColumn(ColCategory)
	table.AddColumn(ColCategory) // no-op

	cols := table.Columns()
	if len(cols) != 3 || cols[2] != ColCategory {
		t.Errorf("Expected [date amount category], got %v", cols)
	}
}

func TestMissingColumnsPreservesOrder(t *testing.T) {
	table := NewTable(ColAmount)

	missing := table.MissingColumns(ColCategory, ColAmount, ColDate)
	if len(missing) != 2 || missing[0] != ColCategory || missing[1] != ColDate {
		t.Errorf("Expected [category date], got %v", missing)
	}
}

func TestSchemaErrorMessage(t *testing.T) {
	err := NewSchemaError("detect", []string{ColCategory, ColAmount})
	if err == nil {
		t.Fatal("Expected an error")
	}
	want := "detect: missing required columns: category, amount"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	if NewSchemaError("detect", nil) != nil {
		t.Error("Expected nil for no missing columns")
	}
}

func TestRawTableColumnIndex(t *testing.T) {
	raw := &RawTable{Header: []string{" Date ", "AMOUNT", "description"}}

	if idx := raw.ColumnIndex("date"); idx != 0 {
		t.Errorf("Expected 0, got %d", idx)
	}
	if idx := raw.ColumnIndex("amount"); idx != 1 {
		t.Errorf("Expected 1, got %d", idx)
	}
	if idx := raw.ColumnIndex("category"); idx != -1 {
		t.Errorf("Expected -1, got %d", idx)
	}
}
