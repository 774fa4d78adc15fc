package mealplan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"shopping-consolidator/internal/shopping"
)

// Meal is one meal slot of a day.
type Meal struct {
	Type          string   `json:"-"`
	Name          string   `json:"name"`
	PrepTime      string   `json:"prepTime,omitempty"`
	CookTime      string   `json:"cookTime,omitempty"`
	Servings      int      `json:"servings,omitempty"`
	EstimatedCost string   `json:"estimatedCost,omitempty"`
	Ingredients   []string `json:"ingredients,omitempty"`
}

// DayPlan represents the plan for a single day.
type DayPlan struct {
	Day   string
	Meals []Meal
}

// MealPlan is a generated plan together with its shopping list.
type MealPlan struct {
	Days               []DayPlan
	ShoppingList       shopping.ShoppingList
	TotalEstimatedCost string
}

// payload is the wire shape: {"mealPlan": {"Monday": {"breakfast": {...}}}, "shoppingList": {...}}.
type payload struct {
	MealPlan           json.RawMessage       `json:"mealPlan"`
	ShoppingList       shopping.ShoppingList `json:"shoppingList"`
	TotalEstimatedCost string                `json:"totalEstimatedCost"`
}

// Decode reads a meal plan payload. Markdown code fences around the JSON are ignored.
func Decode(r io.Reader) (*MealPlan, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read meal plan: %w", err)
	}
	return Parse(raw)
}

// Parse is Decode for an in-memory payload.
func Parse(raw []byte) (*MealPlan, error) {
	raw = stripCodeFence(raw)

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan: %w", err)
	}

	plan := &MealPlan{ShoppingList: p.ShoppingList, TotalEstimatedCost: p.TotalEstimatedCost}
	err := eachField(p.MealPlan, func(day string, value json.RawMessage) error {
		d := DayPlan{Day: day}
		err := eachField(value, func(mealType string, value json.RawMessage) error {
			var m Meal
			if err := json.Unmarshal(value, &m); err != nil {
				return fmt.Errorf("failed to decode %s %s: %w", day, mealType, err)
			}
			m.Type = mealType
			d.Meals = append(d.Meals, m)
			return nil
		})
		if err != nil {
			return err
		}
		plan.Days = append(plan.Days, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// eachField walks a JSON object in key order. null or an absent object yields nothing.
func eachField(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key, _ := keyTok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to read %q: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}

func stripCodeFence(raw []byte) []byte {
	text := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(text, "```") {
		return []byte(text)
	}
	// Drop the opening fence line, which may carry a language tag.
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return []byte(strings.TrimSpace(text))
}
