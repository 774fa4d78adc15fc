package shopping

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"shopping-consolidator/internal/units"
)

const quantityToken = `(?:\d+/\d+|\d+(?:\.\d+)?|\.\d+)`

var (
	// "2 1/4 cups whole milk"
	quantityUnitName = regexp.MustCompile(`^(` + quantityToken + `(?:\s+` + quantityToken + `)*)\s+(\S+)\s+(.+)$`)
	// "cups flour"
	unitName = regexp.MustCompile(`^(\S+)\s+(.+)$`)
)

// Parser turns free-text shopping-list lines into ParsedItems.
type Parser struct {
	units *units.Table
}

// NewParser returns a parser that recognizes the units in table.
func NewParser(table *units.Table) *Parser {
	return &Parser{units: table}
}

// Parse reads one line. The attempts are, in order: quantity + unit + name, known unit + name
// (quantity 1), and finally the whole line as a name with quantity 1 "each".
// It returns false when the line has no ingredient name.
func (p *Parser) Parse(raw string) (ParsedItem, bool) {
	text := strings.TrimSpace(raw)

	if m := quantityUnitName.FindStringSubmatch(text); m != nil {
		if qty, ok := parseQuantity(m[1]); ok {
			return newParsedItem(raw, qty, m[2], m[3])
		}
	}

	if m := unitName.FindStringSubmatch(text); m != nil {
		if _, ok := p.units.Classify(m[1]); ok {
			return newParsedItem(raw, 1, m[1], m[2])
		}
	}

	return newParsedItem(raw, 1, units.BaseCount, text)
}

func newParsedItem(raw string, qty float64, unit, name string) (ParsedItem, bool) {
	name = cleanName(name)
	if name == "" {
		return ParsedItem{}, false
	}
	return ParsedItem{
		RawText:  raw,
		Quantity: qty,
		Unit:     strings.ToLower(strings.TrimSpace(unit)),
		Name:     name,
	}, true
}

// parseQuantity sums whitespace-separated numbers and a/b fractions, so "2 1/4" is 2.25.
func parseQuantity(expr string) (float64, bool) {
	var total float64
	for _, tok := range strings.Fields(expr) {
		total += tokenValue(tok)
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, false
	}
	return total, true
}

func tokenValue(tok string) float64 {
	if num, den, ok := strings.Cut(tok, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0
		}
		return n / d
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0
	}
	return v
}

func cleanName(name string) string {
	name = strings.ReplaceAll(name, ",", "")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
