package shopping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConsolidatedCategory is the single category a consolidated list is rendered under.
const ConsolidatedCategory = "Consolidated"

// DefaultCategory collects items that appear before any category header.
const DefaultCategory = "Items"

// ErrListNotFound is returned when a saved list does not exist.
var ErrListNotFound = errors.New("shopping list not found")

// Category is one named group of free-text shopping-list lines.
type Category struct {
	Name  string
	Items []string
	// Raw is the category value as decoded, written back verbatim so a list that is not
	// consolidated goes out exactly as it came in. Add clears it.
	Raw   json.RawMessage
}

// ShoppingList maps category names to item lines, keeping the order categories arrived in.
// On the wire it is a JSON object: {"Produce": ["2 onions", ...], ...}.
type ShoppingList struct {
	Categories []Category
}

// Add appends items to the named category, creating it on first use.
func (l *ShoppingList) Add(category string, items ...string) {
	for i := range l.Categories {
		if l.Categories[i].Name == category {
			l.Categories[i].Items = append(l.Categories[i].Items, items...)
			if len(items) > 0 {
				l.Categories[i].Raw = nil
			}
			return
		}
	}
	l.Categories = append(l.Categories, Category{Name: category, Items: append([]string{}, items...)})
}

// Len returns the number of item lines across all categories.
func (l ShoppingList) Len() int {
	n := 0
	for _, c := range l.Categories {
		n += len(c.Items)
	}
	return n
}

// MarshalJSON writes the list as an object in category order. Decoded categories are written
// as received.
func (l ShoppingList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range l.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		if len(c.Raw) > 0 {
			if err := json.Compact(&buf, c.Raw); err != nil {
				return nil, err
			}
			continue
		}
		items := c.Items
		if items == nil {
			items = []string{}
		}
		values, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(values)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a category -> items object, preserving key order.
// Item objects with an "item" field become "<quantity> <item>" lines, other non-string entries
// are skipped and non-array categories are left empty.
func (l *ShoppingList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read shopping list: %w", err)
	}
	if tok == nil {
		*l = ShoppingList{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("shopping list must be a JSON object, got %v", tok)
	}

	var out ShoppingList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read category name: %w", err)
		}
		name, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to read category %q: %w", name, err)
		}
		out.addRaw(name, raw)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read end of shopping list: %w", err)
	}

	*l = out
	return nil
}

// addRaw adds a decoded category. A repeated key appends to the first one; their raw arrays are
// joined so nothing is lost on the way back out.
func (l *ShoppingList) addRaw(name string, raw json.RawMessage) {
	items := stringItems(raw)
	for i := range l.Categories {
		c := &l.Categories[i]
		if c.Name != name {
			continue
		}
		c.Items = append(c.Items, items...)
		c.Raw = joinArrays(c.Raw, raw)
		return
	}
	l.Categories = append(l.Categories, Category{
		Name:  name,
		Items: items,
		Raw:   append(json.RawMessage(nil), raw...),
	})
}

// joinArrays concatenates two JSON arrays. Anything else yields nil, and the category is then
// written from its parsed items.
func joinArrays(a, b json.RawMessage) json.RawMessage {
	var left, right []json.RawMessage
	if json.Unmarshal(a, &left) != nil || json.Unmarshal(b, &right) != nil {
		return nil
	}
	joined, err := json.Marshal(append(left, right...))
	if err != nil {
		return nil
	}
	return joined
}

// itemObject is the priced item shape some generators emit instead of a plain line.
type itemObject struct {
	Item     string `json:"item"`
	Quantity any    `json:"quantity"`
}

func stringItems(raw json.RawMessage) []string {
	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	items := make([]string, 0, len(values))
	for _, v := range values {
		if len(v) == 0 {
			continue
		}
		switch v[0] {
		case '"':
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				items = append(items, s)
			}
		case '{':
			var obj itemObject
			if err := json.Unmarshal(v, &obj); err == nil && strings.TrimSpace(obj.Item) != "" {
				items = append(items, objectLine(obj))
			}
		}
	}
	return items
}

// objectLine turns {"item": "milk", "quantity": "2 cups"} into "2 cups milk".
func objectLine(obj itemObject) string {
	qty := ""
	switch q := obj.Quantity.(type) {
	case string:
		qty = q
	case float64:
		qty = strconv.FormatFloat(q, 'f', -1, 64)
	}
	return strings.TrimSpace(strings.TrimSpace(qty) + " " + strings.TrimSpace(obj.Item))
}

// ParsedItem is one shopping-list line split into quantity, unit and ingredient name.
type ParsedItem struct {
	RawText  string
	Quantity float64
	Unit     string
	Name     string
}

// ConsolidatedItem is one aggregated line. EstimatedPrice is always nil: per-line prices
// stop meaning anything once lines are merged.
type ConsolidatedItem struct {
	Item           string  `json:"item" msgpack:"item"`
	Quantity       string  `json:"quantity" msgpack:"quantity"`
	EstimatedPrice *string `json:"estimatedPrice" msgpack:"estimated_price"`
}

// Result is the outcome of one consolidation run.
type Result struct {
	Original ShoppingList
	Items    []ConsolidatedItem
	// Dropped holds the raw lines whose unit was not recognized.
	Dropped []string
}

// Applied reports whether consolidation produced anything. When false, callers should show
// the original list.
func (r Result) Applied() bool {
	return len(r.Items) > 0
}

// View returns the list to display: the consolidated category when applied, the original otherwise.
func (r Result) View() any {
	if !r.Applied() {
		return r.Original
	}
	return map[string][]ConsolidatedItem{ConsolidatedCategory: r.Items}
}

// MarshalJSON writes {"Consolidated": [...]} or, when nothing was aggregated, the original list.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.View())
}

// SavedList is a persisted consolidation run, keeping both views so either can be shown later.
type SavedList struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Source    string    `json:"source"`
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
