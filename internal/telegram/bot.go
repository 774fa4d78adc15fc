package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shopping-consolidator/internal/config"
	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/mealplan"
	"shopping-consolidator/internal/metrics"
	"shopping-consolidator/internal/shopping"
)

const (
	sourceTelegram = "telegram"
	historyLimit   = 5
	statsDays      = 7
)

// ListService is what the bot needs from the consolidation service.
type ListService interface {
	SaveAndConsolidate(ctx context.Context, userID, source string, list shopping.ShoppingList) (*shopping.SavedList, error)
	Get(ctx context.Context, id string) (*shopping.SavedList, error)
	Recent(ctx context.Context, userID string, limit int) ([]shopping.SavedList, error)
}

// StatsReader reads aggregated run metrics.
type StatsReader interface {
	GetDailyStats(ctx context.Context, days int) ([]metrics.DailyStats, error)
}

// sender is the part of tgbotapi.BotAPI the bot talks through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API and the consolidation service.
type Bot struct {
	api       sender
	svc       ListService
	stats     StatsReader
	generator mealplan.Generator
	cfg       *config.Config
	log       *logger.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook. stats and generator may be nil.
func NewBot(cfg *config.Config, svc ListService, stats StatsReader, generator mealplan.Generator, log *logger.Logger) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("authorized on telegram", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info("webhook set", "description", resp.Description)

	return newBot(api, cfg, svc, stats, generator, log), nil
}

func newBot(api sender, cfg *config.Config, svc ListService, stats StatsReader, generator mealplan.Generator, log *logger.Logger) *Bot {
	return &Bot{
		api:       api,
		svc:       svc,
		stats:     stats,
		generator: generator,
		cfg:       cfg,
		log:       log.With("service", "TelegramBot"),
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.log.Warn("error parsing update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.CallbackQuery != nil {
		if !b.isAllowed(update.CallbackQuery.From) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil || !b.isAllowed(update.Message.From) {
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if user.ID == id {
			return true
		}
	}
	b.log.Warn("unauthorized access attempt", "user_id", user.ID, "username", user.UserName)
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch msg.Command() {
	case "start", "help":
		b.sendMarkdown(msg.Chat.ID, helpText)
	case "history":
		b.handleHistory(ctx, msg)
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	case "plan":
		b.handlePlanRequest(ctx, msg)
	default:
		b.handleListRequest(ctx, msg)
	}
}

func (b *Bot) handleListRequest(ctx context.Context, msg *tgbotapi.Message) {
	list, err := shopping.ParseText(strings.NewReader(msg.Text))
	if err != nil || list.Len() == 0 {
		b.sendMarkdown(msg.Chat.ID, "🤔 Send me a shopping list, one item per line.")
		return
	}
	b.consolidateAndReply(ctx, msg.Chat.ID, userKey(msg.From), list)
}

func (b *Bot) handlePlanRequest(ctx context.Context, msg *tgbotapi.Message) {
	if b.generator == nil {
		b.sendMarkdown(msg.Chat.ID, "⛔ Meal planning is not configured.")
		return
	}
	request := msg.CommandArguments()
	if strings.TrimSpace(request) == "" {
		b.sendMarkdown(msg.Chat.ID, "Usage: `/plan vegetarian week for two`")
		return
	}

	sent, err := b.api.Send(markdownMessage(msg.Chat.ID, "🧑‍🍳 *Thinking...*"))
	if err != nil {
		b.log.Error("failed to send initial reply", "error", err)
		return
	}

	plan, err := b.generator.Generate(ctx, request)
	if err != nil {
		b.log.Error("error generating plan", "error", err)
		b.editMarkdown(msg.Chat.ID, sent.MessageID, "❌ *Error generating plan:*\n"+escape(err.Error()), nil)
		return
	}
	b.editMarkdown(msg.Chat.ID, sent.MessageID, formatPlan(plan), nil)
	b.consolidateAndReply(ctx, msg.Chat.ID, userKey(msg.From), plan.ShoppingList)
}

func (b *Bot) consolidateAndReply(ctx context.Context, chatID int64, userID string, list shopping.ShoppingList) {
	saved, err := b.svc.SaveAndConsolidate(ctx, userID, sourceTelegram, list)
	if err != nil {
		b.log.Error("failed to save shopping list", "user_id", userID, "error", err)
		b.sendMarkdown(chatID, "❌ Could not save your list, please try again.")
		return
	}

	reply := markdownMessage(chatID, formatView(saved.Result, viewConsolidated))
	keyboard := viewKeyboard(saved.ID, viewConsolidated)
	reply.ReplyMarkup = keyboard
	if _, err := b.api.Send(reply); err != nil {
		b.log.Error("failed to send consolidated list", "error", err)
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}

	mode, id, ok := parseViewCallback(query.Data)
	if !ok || query.Message == nil {
		return
	}

	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID
	saved, err := b.svc.Get(ctx, id)
	if errors.Is(err, shopping.ErrListNotFound) || (err == nil && saved.UserID != userKey(query.From)) {
		b.editMarkdown(chatID, messageID, "🗑 This list is no longer available.", nil)
		return
	}
	if err != nil {
		b.log.Error("failed to load shopping list", "id", id, "error", err)
		return
	}

	keyboard := viewKeyboard(saved.ID, mode)
	b.editMarkdown(chatID, messageID, formatView(saved.Result, mode), &keyboard)
}

func (b *Bot) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	lists, err := b.svc.Recent(ctx, userKey(msg.From), historyLimit)
	if err != nil {
		b.log.Error("failed to load history", "error", err)
		b.sendMarkdown(msg.Chat.ID, "❌ Error fetching your lists.")
		return
	}
	if len(lists) == 0 {
		b.sendMarkdown(msg.Chat.ID, "_No saved lists yet._")
		return
	}

	reply := markdownMessage(msg.Chat.ID, formatHistory(lists))
	reply.ReplyMarkup = historyKeyboard(lists)
	if _, err := b.api.Send(reply); err != nil {
		b.log.Error("failed to send history", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	if b.stats == nil {
		b.sendMarkdown(msg.Chat.ID, "_Metrics are not enabled._")
		return
	}

	stats, err := b.stats.GetDailyStats(ctx, statsDays)
	if err != nil {
		b.log.Error("failed to fetch metrics", "error", err)
		b.sendMarkdown(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatMetrics(stats, metrics.GetSysHealth(b.cfg.DatabasePath)))
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	if _, err := b.api.Send(markdownMessage(chatID, text)); err != nil {
		b.log.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warn("failed to edit message", "chat_id", chatID, "error", err)
	}
}

func markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func userKey(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	return strconv.FormatInt(user.ID, 10)
}
