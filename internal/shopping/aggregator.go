package shopping

import (
	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/units"
)

// AggregateEntry is the running total for one ingredient within one measurement type.
type AggregateEntry struct {
	Name         string
	Type         units.Type
	BaseQuantity float64
}

// Aggregator sums parsed items by (name, unit type), so "4 quarts milk" and "1 gallon milk"
// end up on the same line. It is single-use and not safe for concurrent use.
type Aggregator struct {
	units   *units.Table
	log     *logger.Logger
	index   map[string]int
	entries []AggregateEntry
	dropped []string
}

// NewAggregator returns an empty aggregator.
func NewAggregator(table *units.Table, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{
		units: table,
		log:   log,
		index: make(map[string]int),
	}
}

// Add folds item into its entry. Items with an unrecognized unit are skipped and reported
// through Dropped; Add returns false for them.
func (a *Aggregator) Add(item ParsedItem) bool {
	def, ok := a.units.Classify(item.Unit)
	if !ok {
		a.log.Warn("skipping shopping item with unrecognized unit", "raw", item.RawText, "unit", item.Unit)
		a.dropped = append(a.dropped, item.RawText)
		return false
	}

	key := item.Name + "|" + def.Type.String()
	i, seen := a.index[key]
	if !seen {
		i = len(a.entries)
		a.index[key] = i
		a.entries = append(a.entries, AggregateEntry{Name: item.Name, Type: def.Type})
	}
	a.entries[i].BaseQuantity += units.ToBase(item.Quantity, def)
	return true
}

// Entries returns the totals in the order their keys were first seen.
func (a *Aggregator) Entries() []AggregateEntry {
	return append([]AggregateEntry(nil), a.entries...)
}

// Dropped returns the raw text of skipped items.
func (a *Aggregator) Dropped() []string {
	return append([]string(nil), a.dropped...)
}
