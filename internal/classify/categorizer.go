package classify

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/expense-insights/internal/domain"
)

const (
	// FallbackCategory is assigned whenever the oracle fails, returns a
	// label outside the allowed set, or the description is blank.
	FallbackCategory = "Other"

	// DefaultOracleTimeout bounds a single oracle call. A timed-out call
	// degrades to FallbackCategory like any other oracle failure.
	DefaultOracleTimeout = 60 * time.Second
)

// Categorizer assigns a category to every row of a table, consulting the
// cache before the oracle. Classification is per distinct description: rows
// sharing a description always receive the identical category.
type Categorizer struct {
	oracle Oracle
	cache  *Cache
	model  string

	// Timeout bounds each oracle call; zero means DefaultOracleTimeout.
	Timeout time.Duration

	// Workers sets how many descriptions are classified concurrently.
	// Values below 2 keep the sequential reference behavior.
	Workers int

	Log zerolog.Logger
}

// NewCategorizer wires a categorizer to its oracle and cache. model is the
// model identifier baked into cache keys.
func NewCategorizer(oracle Oracle, cache *Cache, model string) *Categorizer {
	if model == "" {
		model = DefaultModelName
	}
	return &Categorizer{
		oracle: oracle,
		cache:  cache,
		model:  model,
		Log:    zerolog.Nop(),
	}
}

// Categorize fills the category column for every row. It fails with a
// SchemaError when the description column is absent; oracle failures never
// abort the run, they degrade to FallbackCategory per description.
func (c *Categorizer) Categorize(ctx context.Context, table *domain.Table, categories []string) (*domain.Table, error) {
	if err := domain.NewSchemaError("categorize", table.MissingColumns(domain.ColDescription)); err != nil {
		return nil, err
	}

	distinct := distinctDescriptions(table)

	mapping, err := c.classifyAll(ctx, distinct, categories)
	if err != nil {
		return nil, err
	}

	for i := range table.Rows {
		table.Rows[i].Category = mapping[table.Rows[i].Description]
	}
	table.AddColumn(domain.ColCategory)
	return table, nil
}

// classifyAll resolves a category for each distinct description. With
// Workers > 1 the oracle calls run concurrently under a bounded errgroup;
// per-description semantics are identical either way.
func (c *Categorizer) classifyAll(ctx context.Context, descriptions []string, categories []string) (map[string]string, error) {
	mapping := make(map[string]string, len(descriptions))

	if c.Workers > 1 {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.Workers)
		for _, desc := range descriptions {
			g.Go(func() error {
				category := c.resolve(gctx, desc, categories)
				mu.Lock()
				mapping[desc] = category
				mu.Unlock()
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return mapping, nil
	}

	for _, desc := range descriptions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mapping[desc] = c.resolve(ctx, desc, categories)
	}
	return mapping, nil
}

// resolve returns the category for one description: blank input short-
// circuits to the fallback, then cache, then the oracle. Every new oracle
// verdict is written through to the cache before it is returned.
func (c *Categorizer) resolve(ctx context.Context, description string, categories []string) string {
	if strings.TrimSpace(description) == "" {
		return FallbackCategory
	}

	key := Key(c.model, categories, description)
	if category, ok := c.cache.Get(key); ok {
		return category
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	category, err := c.oracle.Classify(cctx, description, categories)
	switch {
	case err != nil:
		c.Log.Warn().Err(err).Str("description", description).Msg("oracle call failed, falling back to Other")
		category = FallbackCategory
	case !containsCategory(categories, category):
		c.Log.Warn().Str("description", description).Str("category", category).Msg("oracle returned category outside allowed set, falling back to Other")
		category = FallbackCategory
	}

	if err := c.cache.Put(key, category); err != nil {
		c.Log.Warn().Err(err).Msg("persisting classification cache failed")
	}
	return category
}

// distinctDescriptions returns the unique description values, sorted for a
// stable classification order.
func distinctDescriptions(table *domain.Table) []string {
	seen := make(map[string]bool, table.Len())
	var out []string
	for i := range table.Rows {
		desc := table.Rows[i].Description
		if !seen[desc] {
			seen[desc] = true
			out = append(out, desc)
		}
	}
	sort.Strings(out)
	return out
}

func containsCategory(categories []string, candidate string) bool {
	for _, cat := range categories {
		if cat == candidate {
			return true
		}
	}
	return false
}
