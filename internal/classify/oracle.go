// Package classify maps transaction descriptions to spending categories.
// Classification is delegated to an external oracle; results are memoized
// in a write-through persistent cache so each distinct description costs at
// most one oracle call per model and category set.
package classify

import (
	"context"
)

// Oracle is the external classification service: free text in, one label
// from the allowed set out. Implementations may be slow and may fail; the
// categorizer treats every failure as category "Other".
type Oracle interface {
	Classify(ctx context.Context, description string, categories []string) (string, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, description string, categories []string) (string, error)

func (f OracleFunc) Classify(ctx context.Context, description string, categories []string) (string, error) {
	return f(ctx, description, categories)
}
