package shopping

import (
	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/units"
)

// Consolidator merges a whole shopping list into one deduplicated category.
// It holds no per-run state and is safe for concurrent use.
type Consolidator struct {
	units  *units.Table
	parser *Parser
	log    *logger.Logger
}

// Option configures a Consolidator.
type Option func(*Consolidator)

// WithLogger sets the logger used to report dropped lines.
func WithLogger(l *logger.Logger) Option {
	return func(c *Consolidator) {
		if l != nil {
			c.log = l
		}
	}
}

// NewConsolidator returns a consolidator backed by table.
func NewConsolidator(table *units.Table, opts ...Option) *Consolidator {
	c := &Consolidator{
		units:  table,
		parser: NewParser(table),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consolidate parses every line of list in order, sums duplicate ingredients and formats the
// totals. Category names are discarded. Lines without a name or with an unknown unit are left
// out; if nothing survives, the result falls back to the original list (see Result.Applied).
func (c *Consolidator) Consolidate(list ShoppingList) Result {
	agg := NewAggregator(c.units, c.log)
	for _, category := range list.Categories {
		for _, raw := range category.Items {
			item, ok := c.parser.Parse(raw)
			if !ok {
				continue
			}
			agg.Add(item)
		}
	}

	result := Result{
		Original: list,
		Dropped:  agg.Dropped(),
	}
	for _, e := range agg.Entries() {
		result.Items = append(result.Items, ConsolidatedItem{
			Item:     capitalize(e.Name),
			Quantity: FormatQuantity(e.BaseQuantity, e.Type),
		})
	}
	return result
}

// Consolidate runs a consolidator over the default unit table.
func Consolidate(list ShoppingList) Result {
	return NewConsolidator(units.Default()).Consolidate(list)
}
