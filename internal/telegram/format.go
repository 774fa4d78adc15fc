package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shopping-consolidator/internal/mealplan"
	"shopping-consolidator/internal/metrics"
	"shopping-consolidator/internal/shopping"
)

const (
	viewOriginal     = "original"
	viewConsolidated = "consolidated"
)

const helpText = `🛒 *Shopping List Consolidator*

Paste a shopping list, one item per line. Lines ending in ":" start a category.
I'll merge duplicates like "2 cups milk" and "1 cup milk" into one line.

/history - your recent lists
/plan <request> - generate a meal plan and consolidate its list`

// formatView renders a saved result in the requested mode. A result with nothing consolidated
// is always shown as the original list.
func formatView(r shopping.Result, mode string) string {
	if mode == viewOriginal {
		return formatOriginal(r.Original, "📝 *Original List*")
	}
	if !r.Applied() {
		return formatOriginal(r.Original, "📝 *Your List*\n_Nothing could be consolidated, showing it as sent._")
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Consolidated Shopping List*\n\n")
	for _, item := range r.Items {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", escape(item.Item), escape(item.Quantity)))
	}
	if len(r.Dropped) > 0 {
		sb.WriteString("\n⚠️ _Skipped, unknown unit:_\n")
		for _, raw := range r.Dropped {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(raw)))
		}
	}
	return sb.String()
}

func formatOriginal(list shopping.ShoppingList, header string) string {
	var sb strings.Builder
	sb.WriteString(header + "\n")
	if list.Len() == 0 {
		sb.WriteString("\n_Empty list_\n")
		return sb.String()
	}
	for _, c := range list.Categories {
		if len(c.Items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n*%s*\n", escape(c.Name)))
		for _, item := range c.Items {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(item)))
		}
	}
	return sb.String()
}

func formatPlan(plan *mealplan.MealPlan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Meal Plan*\n\n")
	for _, day := range plan.Days {
		sb.WriteString(fmt.Sprintf("*%s*\n", escape(day.Day)))
		for _, meal := range day.Meals {
			sb.WriteString(fmt.Sprintf("• %s: %s", escape(meal.Type), escape(meal.Name)))
			if meal.PrepTime != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", escape(meal.PrepTime)))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	if plan.TotalEstimatedCost != "" {
		sb.WriteString(fmt.Sprintf("💰 *Estimated cost:* %s\n", escape(plan.TotalEstimatedCost)))
	}
	return sb.String()
}

func formatHistory(lists []shopping.SavedList) string {
	var sb strings.Builder
	sb.WriteString("🗂 *Recent Lists*\n\n")
	for i, l := range lists {
		sb.WriteString(fmt.Sprintf("%d. %s: %d items → %d lines\n",
			i+1, l.CreatedAt.Format("Jan 2 15:04"), l.Result.Original.Len(), len(l.Result.Items)))
	}
	return sb.String()
}

func formatMetrics(stats []metrics.DailyStats, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Consolidations*\n")
	if len(stats) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range stats {
		sb.WriteString(fmt.Sprintf("• *%s*: %d runs, %d → %d lines, %d dropped, %d cached (avg %s)\n",
			d.Date, d.Runs, d.InputItems, d.OutputItems, d.DroppedItems, d.CacheHits, d.AvgLatency))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataSize))
	return sb.String()
}

// viewKeyboard toggles between the two views; the active one is checked.
func viewKeyboard(id, active string) tgbotapi.InlineKeyboardMarkup {
	label := func(mode, text string) string {
		if mode == active {
			return "✅ " + text
		}
		return text
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label(viewOriginal, "Original"), viewCallback(viewOriginal, id)),
			tgbotapi.NewInlineKeyboardButtonData(label(viewConsolidated, "Consolidated"), viewCallback(viewConsolidated, id)),
		),
	)
}

func historyKeyboard(lists []shopping.SavedList) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lists))
	for i, l := range lists {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Open #%d", i+1), viewCallback(viewConsolidated, l.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Callback data is limited to 64 bytes: "view|consolidated|" plus a 36 byte uuid fits.
func viewCallback(mode, id string) string {
	return "view|" + mode + "|" + id
}

func parseViewCallback(data string) (mode, id string, ok bool) {
	parts := strings.SplitN(data, "|", 3)
	if len(parts) != 3 || parts[0] != "view" || parts[2] == "" {
		return "", "", false
	}
	if parts[1] != viewOriginal && parts[1] != viewConsolidated {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
