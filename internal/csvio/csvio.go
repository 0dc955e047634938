// Package csvio loads raw ledger CSV files and writes annotated tables back
// out. Files are read as UTF-8 first; byte sequences that are not valid
// UTF-8 are retried as ISO-8859-1, which covers the common case of bank
// exports produced on legacy Windows locales.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/dvloznov/expense-insights/internal/domain"
)

const dateLayout = "2006-01-02"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a CSV file into a RawTable. The first record is the header;
// ragged records are padded or truncated to the header width so a sloppy
// export does not abort the whole run.
func Load(path string) (*domain.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes CSV bytes into a RawTable, applying the ISO-8859-1 fallback
// when the payload is not valid UTF-8.
func Parse(data []byte) (*domain.RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		r = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(data))
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvio: parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csvio: empty input, no header row")
	}

	header := records[0]
	table := &domain.RawTable{
		Header:  header,
		Records: make([][]string, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		table.Records = append(table.Records, row)
	}
	return table, nil
}

// Save writes the table to path as CSV. Columns are written in the table's
// logical order; canonical columns come from the typed fields, everything
// else from the row's passthrough map.
func Save(path string, table *domain.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvio: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	columns := table.Columns()
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("csvio: writing header: %w", err)
	}

	for i := range table.Rows {
		record := make([]string, len(columns))
		for j, col := range columns {
			record[j] = cellValue(&table.Rows[i], col)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csvio: writing row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvio: flushing %s: %w", path, err)
	}
	return nil
}

func cellValue(tx *domain.Transaction, column string) string {
	switch column {
	case domain.ColDate:
		return tx.Date.Format(dateLayout)
	case domain.ColAmount:
		return strconv.FormatFloat(tx.Amount, 'f', -1, 64)
	case domain.ColDescription:
		return tx.Description
	case domain.ColCategory:
		return tx.Category
	case domain.ColAnomaly:
		return strconv.FormatBool(tx.Anomaly)
	case domain.ColAnomalyReason:
		return tx.AnomalyReason
	default:
		return tx.Extra[column]
	}
}

// OutputName derives the annotated-output filename for an input file,
// e.g. "statements/march.csv" -> "processed_20240301_120000_march.csv".
func OutputName(inputPath string, now time.Time) string {
	base := filepath.Base(inputPath)
	return fmt.Sprintf("processed_%s_%s", now.Format("20060102_150405"), base)
}
