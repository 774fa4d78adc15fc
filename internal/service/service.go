package service

import (
	"context"
	"fmt"
	"time"

	"shopping-consolidator/internal/cache"
	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/metrics"
	"shopping-consolidator/internal/shopping"
)

// ListRepository persists consolidation runs.
type ListRepository interface {
	Save(ctx context.Context, list *shopping.SavedList) (string, error)
	Get(ctx context.Context, id string) (*shopping.SavedList, error)
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]shopping.SavedList, error)
	Delete(ctx context.Context, id string) error
}

// MetricsRecorder records one row per consolidation run.
type MetricsRecorder interface {
	Record(ctx context.Context, m metrics.RunMetric) error
}

// ResultCache is an optional store of previous consolidation results.
type ResultCache interface {
	Get(ctx context.Context, key string) (*cache.Entry, bool, error)
	Set(ctx context.Context, key string, entry cache.Entry) error
}

// Service is the entry point every surface (CLI, HTTP, Telegram) consolidates through.
type Service struct {
	consolidator *shopping.Consolidator
	repo         ListRepository
	metrics      MetricsRecorder
	cache        ResultCache
	log          *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables result caching.
func WithCache(c ResultCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics records a metric for every run.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a service. repo may be nil for callers that never save.
func NewService(consolidator *shopping.Consolidator, repo ListRepository, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		consolidator: consolidator,
		repo:         repo,
		log:          log.With("service", "Consolidation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Consolidate runs the pipeline over list. Cache and metrics failures are logged, never returned.
func (s *Service) Consolidate(ctx context.Context, source string, list shopping.ShoppingList) shopping.Result {
	start := time.Now()

	key, result, hit := s.lookup(ctx, list)
	if !hit {
		result = s.consolidator.Consolidate(list)
		s.store(ctx, key, result)
	}

	s.record(ctx, metrics.RunMetric{
		Source:       source,
		InputItems:   list.Len(),
		OutputItems:  len(result.Items),
		DroppedItems: len(result.Dropped),
		CacheHit:     hit,
		Latency:      time.Since(start),
	})

	if len(result.Dropped) > 0 {
		s.log.Info("consolidated with dropped lines", "source", source, "dropped", len(result.Dropped))
	}
	return result
}

// SaveAndConsolidate consolidates list and persists both views for userID.
func (s *Service) SaveAndConsolidate(ctx context.Context, userID, source string, list shopping.ShoppingList) (*shopping.SavedList, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no repository configured")
	}
	saved := &shopping.SavedList{
		UserID: userID,
		Source: source,
		Result: s.Consolidate(ctx, source, list),
	}
	if _, err := s.repo.Save(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to save shopping list: %w", err)
	}
	return saved, nil
}

// Get loads a saved list. Missing lists return shopping.ErrListNotFound.
func (s *Service) Get(ctx context.Context, id string) (*shopping.SavedList, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no repository configured")
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a saved list owned by userID. Lists owned by someone else are reported as
// shopping.ErrListNotFound.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if s.repo == nil {
		return fmt.Errorf("no repository configured")
	}
	saved, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if saved.UserID != userID {
		return shopping.ErrListNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Recent lists the newest saved lists for userID.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]shopping.SavedList, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no repository configured")
	}
	return s.repo.ListRecentByUser(ctx, userID, limit)
}

func (s *Service) lookup(ctx context.Context, list shopping.ShoppingList) (string, shopping.Result, bool) {
	if s.cache == nil {
		return "", shopping.Result{}, false
	}
	key, err := cache.Key(list)
	if err != nil {
		s.log.Warn("cache key failed", "error", err)
		return "", shopping.Result{}, false
	}
	entry, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache lookup failed", "error", err)
		return key, shopping.Result{}, false
	}
	if !ok {
		return key, shopping.Result{}, false
	}
	return key, entry.Result(list), true
}

func (s *Service) store(ctx context.Context, key string, result shopping.Result) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, cache.NewEntry(result)); err != nil {
		s.log.Warn("cache store failed", "error", err)
	}
}

func (s *Service) record(ctx context.Context, m metrics.RunMetric) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.Record(ctx, m); err != nil {
		s.log.Warn("failed to record consolidation metric", "error", err)
	}
}
