package domain

import (
	"fmt"
	"strings"
)

// SchemaError reports that a pipeline stage was handed a table without the
// columns it requires. It is fatal to that stage: no partial processing is
// attempted.
type SchemaError struct {
	Stage   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Stage, strings.Join(e.Missing, ", "))
}

// NewSchemaError builds a SchemaError for the given stage, or nil when
// nothing is missing.
func NewSchemaError(stage string, missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return &SchemaError{Stage: stage, Missing: missing}
}
