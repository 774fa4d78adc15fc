package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shopping-consolidator/internal/app"
	"shopping-consolidator/internal/config"
	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/mealplan"
	"shopping-consolidator/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	ctx := context.Background()

	// 2. Database, cache and consolidation service
	application, err := app.NewApp(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("failed to initialize application", "error", err)
	}
	defer application.Close()

	// 3. Meal plans are optional
	var generator mealplan.Generator
	if cfg.RequireGemini() == nil {
		geminiClient, err := mealplan.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			appLog.Fatal("failed to create Gemini client", "error", err)
		}
		defer geminiClient.Close()
		generator = mealplan.NewLLMGenerator(geminiClient, appLog)
	} else {
		appLog.Warn("GEMINI_API_KEY not set, /plan is disabled")
	}

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application.Service(), application.Metrics(), generator, appLog)
	if err != nil {
		appLog.Fatal("failed to initialize Telegram bot", "error", err)
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Telegram bot server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		appLog.Error("server forced to shutdown", "error", err)
	}

	appLog.Info("server exiting")
}
