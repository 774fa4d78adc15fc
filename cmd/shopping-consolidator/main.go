package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"shopping-consolidator/internal/app"
	"shopping-consolidator/internal/config"
	"shopping-consolidator/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	ctx := context.Background()

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	application, err := app.NewApp(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("failed to initialize application", "error", err)
	}
	defer application.Close()

	switch cmd {
	case "consolidate":
		err = runConsolidate(ctx, application, args)
	case "plan":
		err = runPlan(ctx, application, args)
	case "stats":
		err = runStats(ctx, application, args)
	case "metrics-cleanup":
		err = runMetricsCleanup(ctx, application, args)
	case "serve":
		err = runServe(application, cfg, appLog)
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		appLog.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func runConsolidate(ctx context.Context, application *app.App, args []string) error {
	fs := pflag.NewFlagSet("consolidate", pflag.ExitOnError)
	format := fs.StringP("format", "f", app.FormatAuto, "Input format: auto, json, text or html")
	jsonOut := fs.BoolP("json", "j", false, "Print the result as JSON")
	user := fs.StringP("user", "u", "", "Save the run for this user ID")
	fs.Parse(args)

	path := "-"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	saved, err := application.Consolidate(ctx, path, *format, *user)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(saved.Result)
	}
	fmt.Println(app.RenderResult(saved.Result))
	if saved.ID != "" {
		fmt.Printf("Saved as %s\n", saved.ID)
	}
	return nil
}

func runPlan(ctx context.Context, application *app.App, args []string) error {
	fs := pflag.NewFlagSet("plan", pflag.ExitOnError)
	request := fs.StringP("request", "r", "", "What to plan, e.g. \"3 vegetarian dinners\"")
	jsonOut := fs.BoolP("json", "j", false, "Print the plan and list as JSON")
	fs.Parse(args)

	if *request == "" {
		return errors.New("--request is required")
	}

	plan, result, err := application.Plan(ctx, *request)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"mealPlan": plan, "shoppingList": result})
	}
	fmt.Println(app.RenderPlan(plan))
	fmt.Println(app.RenderResult(result))
	return nil
}

func runStats(ctx context.Context, application *app.App, args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ExitOnError)
	days := fs.IntP("days", "d", 7, "Number of days to report")
	fs.Parse(args)

	stats, err := application.Metrics().GetDailyStats(ctx, *days)
	if err != nil {
		return err
	}
	fmt.Println(app.RenderStats(stats))
	return nil
}

func runMetricsCleanup(ctx context.Context, application *app.App, args []string) error {
	fs := pflag.NewFlagSet("metrics-cleanup", pflag.ExitOnError)
	days := fs.IntP("days", "d", 30, "Keep records for the last N days")
	fs.Parse(args)

	affected, err := application.CleanupMetrics(ctx, *days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
	return nil
}

func runServe(application *app.App, cfg *config.Config, appLog *logger.Logger) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("HTTP API listening", "port", cfg.Port)
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
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	appLog.Info("server exiting")
	return nil
}

func printUsage() {
	fmt.Println("Usage: shopping-consolidator <command> [flags] [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  consolidate [file|-]   Merge duplicate lines of a shopping list (stdin when no file)")
	fmt.Println("  plan --request TEXT    Generate a meal plan with Gemini and consolidate its list")
	fmt.Println("  stats                  Show daily consolidation metrics")
	fmt.Println("  metrics-cleanup        Remove old metric records")
	fmt.Println("  serve                  Start the HTTP API")
}
