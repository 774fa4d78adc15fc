// Package units holds the measurement knowledge used to read and write shopping-list quantities.
package units

import (
	"fmt"
	"strings"
	"sync"
)

// Type is the measurement family a unit belongs to.
type Type int

const (
	Volume Type = iota
	Weight
	Count
)

// String returns the lower-case name of the type.
func (t Type) String() string {
	switch t {
	case Volume:
		return "volume"
	case Weight:
		return "weight"
	case Count:
		return "count"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Base unit names per type.
const (
	BaseVolume = "ml"
	BaseWeight = "g"
	BaseCount  = "each"
)

// Definition describes one unit and every spelling that refers to it.
type Definition struct {
	Canonical    string
	Aliases      []string
	Type         Type
	ToBaseFactor float64
}

// Table is an immutable alias lookup. Build it with NewTable; it is safe for concurrent use.
type Table struct {
	byAlias map[string]Definition
}

// NewTable indexes defs by canonical name and aliases.
func NewTable(defs []Definition) (*Table, error) {
	t := &Table{
		byAlias: make(map[string]Definition),
	}
	for _, d := range defs {
		if d.Type != Volume && d.Type != Weight && d.Type != Count {
			return nil, fmt.Errorf("unit %q: unknown type %v", d.Canonical, d.Type)
		}
		if d.ToBaseFactor <= 0 {
			return nil, fmt.Errorf("unit %q: factor must be positive, got %v", d.Canonical, d.ToBaseFactor)
		}
		d.Aliases = append([]string(nil), d.Aliases...)
		for _, name := range append([]string{d.Canonical}, d.Aliases...) {
			key := normalize(name)
			if key == "" {
				return nil, fmt.Errorf("unit %q: empty alias", d.Canonical)
			}
			if prev, ok := t.byAlias[key]; ok && prev.Canonical != d.Canonical {
				return nil, fmt.Errorf("alias %q used by both %q and %q", key, prev.Canonical, d.Canonical)
			}
			t.byAlias[key] = d
		}
	}
	return t, nil
}

// Classify looks up a unit token. The token is trimmed and lower-cased first.
func (t *Table) Classify(token string) (Definition, bool) {
	d, ok := t.byAlias[normalize(token)]
	return d, ok
}

// ToBase converts quantity of unit d into the base unit of its type.
func ToBase(quantity float64, d Definition) float64 {
	return quantity * d.ToBaseFactor
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(standardDefinitions)
	if err != nil {
		panic(fmt.Sprintf("units: invalid standard table: %v", err))
	}
	return t
})

// Default returns the standard US kitchen table.
func Default() *Table {
	return defaultTable()
}
