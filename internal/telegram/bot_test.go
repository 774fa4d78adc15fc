package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"shopping-consolidator/internal/config"
	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/mealplan"
	"shopping-consolidator/internal/metrics"
	"shopping-consolidator/internal/shopping"
)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("Expected a message to be sent")
	}
	switch c := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return c.Text
	case tgbotapi.EditMessageTextConfig:
		return c.Text
	}
	t.Fatalf("Unexpected chattable %T", f.sent[len(f.sent)-1])
	return ""
}

type fakeService struct {
	saved map[string]*shopping.SavedList
}

func (f *fakeService) SaveAndConsolidate(ctx context.Context, userID, source string, list shopping.ShoppingList) (*shopping.SavedList, error) {
	s := &shopping.SavedList{ID: "list-1", UserID: userID, Source: source, Result: shopping.Consolidate(list), CreatedAt: time.Now()}
	f.saved[s.ID] = s
	return s, nil
}

func (f *fakeService) Get(ctx context.Context, id string) (*shopping.SavedList, error) {
	s, ok := f.saved[id]
	if !ok {
		return nil, shopping.ErrListNotFound
	}
	return s, nil
}

func (f *fakeService) Recent(ctx context.Context, userID string, limit int) ([]shopping.SavedList, error) {
	var out []shopping.SavedList
	for _, s := range f.saved {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeStats struct{}

func (fakeStats) GetDailyStats(ctx context.Context, days int) ([]metrics.DailyStats, error) {
	return []metrics.DailyStats{{Date: "2025-03-01", Runs: 3, InputItems: 12, OutputItems: 7, DroppedItems: 1, CacheHits: 1}}, nil
}

type fakeGenerator struct {
	plan *mealplan.MealPlan
	err  error
}

func (f fakeGenerator) Generate(ctx context.Context, request string) (*mealplan.MealPlan, error) {
	return f.plan, f.err
}

func setupBot(gen mealplan.Generator) (*Bot, *fakeSender, *fakeService) {
	api := &fakeSender{}
	svc := &fakeService{saved: map[string]*shopping.SavedList{}}
	cfg := &config.Config{
		TelegramAllowedUserIDs: []int64{42, 7},
		AdminTelegramID:        7,
		DatabasePath:           "testdata-does-not-exist",
	}
	return newBot(api, cfg, svc, fakeStats{}, gen, logger.Nop()), api, svc
}

func textMessage(userID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: 100},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return msg
}

func TestProcessMessageConsolidates(t *testing.T) {
	bot, api, svc := setupBot(nil)

	bot.processMessage(textMessage(42, "Dairy:\n- 2 cups milk\n- 1 cup milk\nProduce:\n- 3 smidges salt"))

	if _, ok := svc.saved["list-1"]; !ok {
		t.Fatal("Expected the list to be saved")
	}
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("Expected a new message, got %T", api.sent[0])
	}
	if !strings.Contains(msg.Text, "• Milk: 6/4 pints") {
		t.Errorf("Expected consolidated milk line, got %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "3 smidges salt") {
		t.Errorf("Expected skipped line to be listed, got %q", msg.Text)
	}
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(keyboard.InlineKeyboard[0]) != 2 {
		t.Fatalf("Expected a two-button toggle keyboard, got %#v", msg.ReplyMarkup)
	}
	if data := *keyboard.InlineKeyboard[0][0].CallbackData; data != "view|original|list-1" {
		t.Errorf("Expected original toggle callback, got %s", data)
	}
}

func TestProcessMessageEmpty(t *testing.T) {
	bot, api, _ := setupBot(nil)

	bot.processMessage(textMessage(42, "Produce:"))

	if !strings.Contains(api.lastText(t), "Send me a shopping list") {
		t.Errorf("Expected usage hint, got %q", api.lastText(t))
	}
}

func TestCallbackTogglesView(t *testing.T) {
	bot, api, _ := setupBot(nil)
	bot.processMessage(textMessage(42, "2 cups milk\n1 cup milk"))

	query := &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: 100}},
		Data:    "view|original|list-1",
	}
	bot.handleCallbackQuery(query)

	if len(api.requests) != 1 {
		t.Errorf("Expected the callback to be answered")
	}
	edit, ok := api.sent[len(api.sent)-1].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("Expected an edit, got %T", api.sent[len(api.sent)-1])
	}
	if !strings.Contains(edit.Text, "Original List") || !strings.Contains(edit.Text, "• 2 cups milk") {
		t.Errorf("Expected original view, got %q", edit.Text)
	}
	if edit.ReplyMarkup == nil || !strings.HasPrefix(edit.ReplyMarkup.InlineKeyboard[0][0].Text, "✅") {
		t.Errorf("Expected original button to be checked")
	}

	t.Run("OtherUsersList", func(t *testing.T) {
		query.From = &tgbotapi.User{ID: 7}
		bot.handleCallbackQuery(query)
		if !strings.Contains(api.lastText(t), "no longer available") {
			t.Errorf("Expected list to be hidden from other users, got %q", api.lastText(t))
		}
	})

	t.Run("MalformedData", func(t *testing.T) {
		before := len(api.sent)
		query.Data = "redo|something"
		bot.handleCallbackQuery(query)
		if len(api.sent) != before {
			t.Errorf("Expected no edit for malformed callback data")
		}
	})
}

func TestHistoryCommand(t *testing.T) {
	bot, api, _ := setupBot(nil)

	bot.processMessage(textMessage(42, "/history"))
	if !strings.Contains(api.lastText(t), "No saved lists yet") {
		t.Errorf("Expected empty history, got %q", api.lastText(t))
	}

	bot.processMessage(textMessage(42, "banana"))
	bot.processMessage(textMessage(42, "/history"))
	msg := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	if !strings.Contains(msg.Text, "1 items → 1 lines") {
		t.Errorf("Expected one history entry, got %q", msg.Text)
	}
	if _, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Errorf("Expected an open button per list")
	}
}

func TestHistorySendFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	api := &fakeSender{}
	svc := &fakeService{saved: map[string]*shopping.SavedList{}}
	cfg := &config.Config{TelegramAllowedUserIDs: []int64{42}}
	bot := newBot(api, cfg, svc, nil, nil, &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	bot.processMessage(textMessage(42, "banana"))
	api.sendErr = errors.New("chat not found")
	bot.processMessage(textMessage(42, "/history"))

	entries := logs.FilterMessage("failed to send history").All()
	if len(entries) != 1 {
		t.Fatalf("Expected the failed send to be logged once, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["error"]; got != "chat not found" {
		t.Errorf("Expected error 'chat not found', got %v", got)
	}
}

func TestMetricsCommand(t *testing.T) {
	bot, api, _ := setupBot(nil)

	bot.processMessage(textMessage(42, "/metrics"))
	if !strings.Contains(api.lastText(t), "Access Denied") {
		t.Errorf("Expected non-admin to be refused, got %q", api.lastText(t))
	}

	bot.processMessage(textMessage(7, "/metrics"))
	text := api.lastText(t)
	if !strings.Contains(text, "*2025-03-01*: 3 runs, 12 → 7 lines, 1 dropped, 1 cached") {
		t.Errorf("Expected daily stats, got %q", text)
	}
	if !strings.Contains(text, "System Health") {
		t.Errorf("Expected health section, got %q", text)
	}
}

func TestPlanCommand(t *testing.T) {
	var list shopping.ShoppingList
	list.Add("Produce", "3 cloves garlic", "2 cloves garlic")
	plan := &mealplan.MealPlan{
		Days:         []mealplan.DayPlan{{Day: "Monday", Meals: []mealplan.Meal{{Type: "dinner", Name: "Garlic Pasta", PrepTime: "20 min"}}}},
		ShoppingList: list,
	}

	t.Run("Success", func(t *testing.T) {
		bot, api, _ := setupBot(fakeGenerator{plan: plan})
		bot.processMessage(textMessage(42, "/plan pasta week"))

		if len(api.sent) != 3 {
			t.Fatalf("Expected status, plan edit and list messages, got %d", len(api.sent))
		}
		edit := api.sent[1].(tgbotapi.EditMessageTextConfig)
		if !strings.Contains(edit.Text, "• dinner: Garlic Pasta (20 min)") {
			t.Errorf("Expected plan text, got %q", edit.Text)
		}
		if !strings.Contains(api.lastText(t), "• Garlic: 5") {
			t.Errorf("Expected consolidated list, got %q", api.lastText(t))
		}
	})

	t.Run("GeneratorError", func(t *testing.T) {
		bot, api, _ := setupBot(fakeGenerator{err: errors.New("quota")})
		bot.processMessage(textMessage(42, "/plan pasta week"))
		if !strings.Contains(api.lastText(t), "Error generating plan") {
			t.Errorf("Expected error text, got %q", api.lastText(t))
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		bot, api, _ := setupBot(nil)
		bot.processMessage(textMessage(42, "/plan pasta week"))
		if !strings.Contains(api.lastText(t), "not configured") {
			t.Errorf("Expected not configured text, got %q", api.lastText(t))
		}
	})

	t.Run("MissingRequest", func(t *testing.T) {
		bot, api, _ := setupBot(fakeGenerator{plan: plan})
		bot.processMessage(textMessage(42, "/plan"))
		if !strings.Contains(api.lastText(t), "Usage") {
			t.Errorf("Expected usage text, got %q", api.lastText(t))
		}
	})
}

func TestWebhookRejectsUnknownUsers(t *testing.T) {
	bot, api, _ := setupBot(nil)
	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	body := `{"update_id": 1, "message": {"message_id": 1, "from": {"id": 999}, "chat": {"id": 100}, "text": "banana"}}`
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if len(api.sent) != 0 {
		t.Errorf("Expected no reply to an unknown user, got %d messages", len(api.sent))
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a bad update, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("Expected health OK, got %d %q", w.Code, w.Body.String())
	}
}
