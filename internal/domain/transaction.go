package domain

import (
	"time"
)

// Canonical column names produced by the pipeline stages. Stages advertise
// the columns they add on the Table so downstream stages can check their
// requirements before touching any rows.
const (
	ColDate          = "date"
	ColAmount        = "amount"
	ColDescription   = "description"
	ColCategory      = "category"
	ColAnomaly       = "anomaly"
	ColAnomalyReason = "anomaly_reason"
)

// Transaction is one normalized ledger row. Fields are populated
// progressively: the normalizer fills Date, Amount and Description, the
// categorizer fills Category, the anomaly detector fills Anomaly and
// AnomalyReason.
type Transaction struct {
	Date        time.Time
	Amount      float64
	Description string // trimmed, lowercase

	Category string

	Anomaly       bool
	AnomalyReason string // matched rule tags joined with "; "

	// Extra holds source columns the pipeline does not interpret, keyed by
	// their original header name. They are carried through untouched and
	// written back out with the annotated table.
	Extra map[string]string
}
