package shopping

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DecodeJSON reads a category -> items JSON object.
func DecodeJSON(r io.Reader) (ShoppingList, error) {
	var list ShoppingList
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return ShoppingList{}, fmt.Errorf("failed to decode shopping list: %w", err)
	}
	return list, nil
}

// ParseText reads a plain-text list. A line ending in ":" starts a category, bullets are
// stripped and lines before any header land in DefaultCategory.
//
//	Produce:
//	- 2 onions
//	- 3 cloves garlic
func ParseText(r io.Reader) (ShoppingList, error) {
	var list ShoppingList
	category := DefaultCategory

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if header, ok := strings.CutSuffix(line, ":"); ok {
			if header = strings.TrimSpace(header); header != "" {
				category = header
				continue
			}
		}
		item := stripBullet(line)
		if item == "" {
			continue
		}
		list.Add(category, item)
	}
	if err := scanner.Err(); err != nil {
		return ShoppingList{}, fmt.Errorf("failed to read shopping list text: %w", err)
	}
	return list, nil
}

func stripBullet(line string) string {
	for _, bullet := range []string{"-", "*", "•"} {
		if rest, ok := strings.CutPrefix(line, bullet); ok {
			return strings.TrimSpace(rest)
		}
	}
	return line
}

// printedItem matches the printed layout "Milk - 2 cups ($3.50)".
var printedItem = regexp.MustCompile(`^(.+?)\s+-\s+(.+?)(?:\s*\([^)]*\))?$`)

// printedLine rewrites "<item> - <quantity> (<price>)" as "<quantity> <item>".
func printedLine(text string) string {
	m := printedItem.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return m[2] + " " + m[1]
}

// ParseHTML reads a rendered list: h1-h4 headings start categories and every li is an item.
// Items in the printed "<item> - <quantity>" layout are turned back into "<quantity> <item>".
func ParseHTML(r io.Reader) (ShoppingList, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ShoppingList{}, fmt.Errorf("failed to parse shopping list html: %w", err)
	}

	// Remove noise before walking the document.
	doc.Find("script, style, nav, footer").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	var list ShoppingList
	category := DefaultCategory
	doc.Find("h1, h2, h3, h4, li").Each(func(i int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			list.Add(category, printedLine(text))
			return
		}
		category = text
	})
	return list, nil
}
