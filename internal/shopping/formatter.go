package shopping

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"

	"shopping-consolidator/internal/units"
)

// pluralFrom is the display quantity at which the plural unit name is used.
const pluralFrom = 1.5

type rung struct {
	min      float64
	size     float64
	singular string
	plural   string
}

// Ladders run from the largest unit down; the last rung is the fallback.
var (
	volumeLadder = []rung{
		{units.MLPerGallon, units.MLPerGallon, "gallon", "gallons"},
		{units.MLPerQuart, units.MLPerQuart, "quart", "quarts"},
		{units.MLPerPint, units.MLPerPint, "pint", "pints"},
		{units.MLPerCup, units.MLPerCup, "cup", "cups"},
		{units.MLPerTablespoon, units.MLPerTablespoon, "tbsp", "tbsp"},
		{0, units.MLPerTeaspoon, "tsp", "tsp"},
	}
	weightLadder = []rung{
		{units.GramsPerPound, units.GramsPerPound, "lb", "lbs"},
		{0, units.GramsPerOunce, "oz", "oz"},
	}
)

// FormatQuantity renders a base-unit total in the largest natural unit for its type.
// Count totals are rounded up and carry no unit.
func FormatQuantity(base float64, t units.Type) string {
	switch t {
	case units.Volume:
		return formatOnLadder(base, volumeLadder)
	case units.Weight:
		return formatOnLadder(base, weightLadder)
	case units.Count:
		return formatCount(base)
	}
	return formatNumber(roundHundredths(base))
}

func formatOnLadder(base float64, ladder []rung) string {
	r := ladder[len(ladder)-1]
	for _, candidate := range ladder[:len(ladder)-1] {
		if base >= candidate.min {
			r = candidate
			break
		}
	}

	qty := roundHundredths(base / r.size)
	unit := r.singular
	if qty >= pluralFrom {
		unit = r.plural
	}
	return formatNumber(qty) + " " + unit
}

// formatCount rounds up: nobody buys 0.7 of a can.
func formatCount(base float64) string {
	n := math.Ceil(base - 1e-9)
	if n <= 0 {
		// Ceil of a tiny negative is -0.
		n = 0
	}
	return strconv.FormatFloat(n, 'f', 0, 64)
}

// formatNumber renders whole numbers as integers, quarter multiples as n/4 fractions and
// anything else with two decimals.
func formatNumber(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', 0, 64)
	}
	if quarters := q * 4; quarters == math.Trunc(quarters) {
		n := int64(quarters)
		switch {
		case n == 1:
			return "1/4"
		case n == 3:
			return "3/4"
		case n%4 == 0:
			return strconv.FormatInt(n/4, 10)
		default:
			return fmt.Sprintf("%d/4", n)
		}
	}
	return strconv.FormatFloat(q, 'f', 2, 64)
}

func roundHundredths(v float64) float64 {
	return math.Round(v*100) / 100
}

// capitalize upper-cases the first letter and leaves the rest alone.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
