package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"shopping-consolidator/internal/cache"
	"shopping-consolidator/internal/config"
	"shopping-consolidator/internal/database"
	"shopping-consolidator/internal/httpapi"
	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/mealplan"
	"shopping-consolidator/internal/metrics"
	"shopping-consolidator/internal/service"
	"shopping-consolidator/internal/shopping"
	"shopping-consolidator/internal/units"
)

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *database.DB
	repo         *shopping.Repository
	metricsStore *metrics.Store
	cache        *cache.RedisCache
	svc          *service.Service
}

// NewApp opens the database, connects the optional cache and wires the service.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{
		cfg:          cfg,
		log:          log,
		db:           db,
		repo:         shopping.NewRepository(db.SQL),
		metricsStore: metrics.NewStore(db.SQL),
	}

	opts := []service.Option{service.WithMetrics(a.metricsStore)}
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisCache(ctx, log, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			// The cache only saves work; run without it.
			log.Warn("result cache disabled", "redis_addr", cfg.RedisAddr, "error", err)
		} else {
			a.cache = c
			opts = append(opts, service.WithCache(c))
		}
	}

	consolidator := shopping.NewConsolidator(units.Default(), shopping.WithLogger(log))
	a.svc = service.NewService(consolidator, a.repo, log, opts...)
	return a, nil
}

// Service returns the consolidation service.
func (a *App) Service() *service.Service {
	return a.svc
}

// Metrics returns the metrics store.
func (a *App) Metrics() *metrics.Store {
	return a.metricsStore
}

// Close releases the cache and database.
func (a *App) Close() error {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("failed to close cache", "error", err)
		}
	}
	return a.db.Close()
}

// Consolidate reads a list from path ("-" for stdin) and consolidates it. With userID set the
// run is also saved.
func (a *App) Consolidate(ctx context.Context, path, format, userID string) (*shopping.SavedList, error) {
	list, err := ReadListFile(path, format)
	if err != nil {
		return nil, err
	}

	source := "cli"
	if userID == "" {
		return &shopping.SavedList{Source: source, Result: a.svc.Consolidate(ctx, source, list)}, nil
	}
	return a.svc.SaveAndConsolidate(ctx, userID, source, list)
}

// Plan asks Gemini for a meal plan and consolidates its shopping list.
func (a *App) Plan(ctx context.Context, request string) (*mealplan.MealPlan, shopping.Result, error) {
	if err := a.cfg.RequireGemini(); err != nil {
		return nil, shopping.Result{}, err
	}

	client, err := mealplan.NewGeminiClient(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
	if err != nil {
		return nil, shopping.Result{}, err
	}
	defer client.Close()

	plan, err := mealplan.NewLLMGenerator(client, a.log).Generate(ctx, request)
	if err != nil {
		return nil, shopping.Result{}, err
	}
	return plan, a.svc.Consolidate(ctx, "plan", plan.ShoppingList), nil
}

// CleanupMetrics removes metric rows older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("days must not be negative, got %d", days)
	}
	return a.metricsStore.Cleanup(ctx, days)
}

// Router builds the HTTP API.
func (a *App) Router() *gin.Engine {
	if a.cfg.LogMode == "prod" || a.cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return httpapi.NewRouter(httpapi.RouterConfig{Service: a.svc, Log: a.log})
}
