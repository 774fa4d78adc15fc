package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shopping-consolidator/internal/mealplan"
	"shopping-consolidator/internal/metrics"
	"shopping-consolidator/internal/shopping"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	categoryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("81"))

	quantityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	boxStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

// RenderResult draws a consolidation result for the terminal.
func RenderResult(r shopping.Result) string {
	var body strings.Builder
	if !r.Applied() {
		body.WriteString(warnStyle.Render("Nothing could be consolidated, showing the list as given.") + "\n")
		body.WriteString(renderOriginal(r.Original))
		return titleStyle.Render("Shopping List") + "\n" + boxStyle.Render(strings.TrimRight(body.String(), "\n"))
	}

	width := 0
	for _, item := range r.Items {
		width = max(width, lipgloss.Width(item.Item))
	}
	for _, item := range r.Items {
		body.WriteString(fmt.Sprintf("%-*s  %s\n", width, item.Item, quantityStyle.Render(item.Quantity)))
	}
	if len(r.Dropped) > 0 {
		body.WriteString("\n" + warnStyle.Render("Skipped (unknown unit):") + "\n")
		for _, raw := range r.Dropped {
			body.WriteString(dimStyle.Render("  "+raw) + "\n")
		}
	}

	summary := dimStyle.Render(fmt.Sprintf("%d lines → %d items", r.Original.Len(), len(r.Items)))
	return titleStyle.Render(shopping.ConsolidatedCategory) + "\n" +
		boxStyle.Render(strings.TrimRight(body.String(), "\n")) + "\n" + summary
}

func renderOriginal(list shopping.ShoppingList) string {
	var sb strings.Builder
	for _, c := range list.Categories {
		sb.WriteString(categoryStyle.Render(c.Name) + "\n")
		for _, item := range c.Items {
			sb.WriteString("  • " + item + "\n")
		}
	}
	return sb.String()
}

// RenderPlan draws a meal plan as a day by day list.
func RenderPlan(plan *mealplan.MealPlan) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Meal Plan") + "\n")
	for _, day := range plan.Days {
		sb.WriteString(categoryStyle.Render(day.Day) + "\n")
		for _, meal := range day.Meals {
			line := fmt.Sprintf("  %s: %s", meal.Type, meal.Name)
			if meal.PrepTime != "" {
				line += dimStyle.Render(" (" + meal.PrepTime + ")")
			}
			sb.WriteString(line + "\n")
		}
	}
	if plan.TotalEstimatedCost != "" {
		sb.WriteString(dimStyle.Render("Estimated cost: "+plan.TotalEstimatedCost) + "\n")
	}
	return sb.String()
}

// RenderStats draws the daily metrics table.
func RenderStats(stats []metrics.DailyStats) string {
	if len(stats) == 0 {
		return dimStyle.Render("No consolidation runs recorded.")
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-10s  %5s  %6s  %6s  %7s  %6s  %s\n", "DAY", "RUNS", "IN", "OUT", "DROPPED", "CACHED", "AVG"))
	for _, d := range stats {
		sb.WriteString(fmt.Sprintf("%-10s  %5d  %6d  %6d  %7d  %6d  %s\n",
			d.Date, d.Runs, d.InputItems, d.OutputItems, d.DroppedItems, d.CacheHits, d.AvgLatency))
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
