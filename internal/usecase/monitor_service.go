package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pricewatch/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// snapshotKeyPrefix namespaces the latest snapshot of each product
const snapshotKeyPrefix = "prices:latest:"

// MonitorServiceConfig holds configuration for the monitor service
type MonitorServiceConfig struct {
	CacheTTL           time.Duration
	Concurrency        int
	EnableDebugLogging bool
}

// MonitorService runs price checks: build prompt -> query completion API ->
// extract -> aggregate -> cache latest snapshot
type MonitorService struct {
	catalog     *domain.Catalog
	cache       domain.CacheRepository
	client      domain.CompletionClient
	prompts     *PromptBuilder
	cacheTTL    time.Duration
	concurrency int
	debug       bool
	now         func() time.Time
}

// NewMonitorService creates a new monitor service with dependencies.
// A nil client leaves the service able to list the catalog and serve cached
// snapshots only.
func NewMonitorService(
	catalog *domain.Catalog,
	cache domain.CacheRepository,
	client domain.CompletionClient,
	config MonitorServiceConfig,
) *MonitorService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	return &MonitorService{
		catalog:     catalog,
		cache:       cache,
		client:      client,
		prompts:     NewPromptBuilder(config.EnableDebugLogging),
		cacheTTL:    cacheTTL,
		concurrency: concurrency,
		debug:       config.EnableDebugLogging,
		now:         time.Now,
	}
}

// Catalog returns the monitored products
func (s *MonitorService) Catalog() *domain.Catalog {
	return s.catalog
}

// CheckPrices runs one refresh cycle for a product.
// An answer without any price line is not an error: the result simply has no observations.
func (s *MonitorService) CheckPrices(ctx context.Context, productName string) (*domain.QueryResult, error) {
	if strings.TrimSpace(productName) == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidRequest)
	}

	product, ok := s.catalog.Get(productName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProductNotFound, productName)
	}

	if s.client == nil {
		return nil, domain.ErrNotConfigured
	}

	prompt := s.prompts.Build(product)

	answer, err := s.client.SubmitQuery(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrCompletionFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionFailure, err)
	}

	capturedAt := s.now()
	observations := ExtractAt(answer, product.Name, capturedAt)

	result := &domain.QueryResult{
		ID:           uuid.NewString(),
		Product:      product.Name,
		Competitors:  product.Competitors,
		TargetPrice:  product.TargetPrice,
		Observations: observations,
		Metrics:      Aggregate(observations),
		RawAnswer:    answer,
		CapturedAt:   capturedAt,
	}

	if s.debug {
		log.Printf("[MONITOR] %q: %d observations (%d available) from %d answer bytes",
			product.Name, result.Metrics.Total, result.Metrics.Available, len(answer))
	}
	if len(observations) == 0 {
		log.Printf("[MONITOR] No price line found in answer for %q", product.Name)
	}

	if err := s.setInCache(ctx, s.generateCacheKey(product.Name), result); err != nil {
		log.Printf("[MONITOR] Failed to cache snapshot for %q: %v", product.Name, err)
	}

	return result, nil
}

// CheckAll refreshes every catalog product, at most Concurrency at a time.
// Results follow catalog order; the first failure cancels the remaining checks.
func (s *MonitorService) CheckAll(ctx context.Context) ([]*domain.QueryResult, error) {
	names := s.catalog.Names()
	results := make([]*domain.QueryResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, name := range names {
		g.Go(func() error {
			result, err := s.CheckPrices(gctx, name)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// LatestResult returns the last cached snapshot of a product
func (s *MonitorService) LatestResult(ctx context.Context, productName string) (*domain.QueryResult, error) {
	if strings.TrimSpace(productName) == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidRequest)
	}

	if _, ok := s.catalog.Get(productName); !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProductNotFound, productName)
	}

	result, err := s.getFromCache(ctx, s.generateCacheKey(productName))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.ErrNoSnapshot
		}
		return nil, err
	}
	return result, nil
}

// generateCacheKey returns the snapshot key of a product.
// Catalog names are unique and matched exactly, so the name is used verbatim.
func (s *MonitorService) generateCacheKey(productName string) string {
	return snapshotKeyPrefix + productName
}

// getFromCache decodes a cached snapshot
func (s *MonitorService) getFromCache(ctx context.Context, key string) (*domain.QueryResult, error) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var result domain.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &result, nil
}

// setInCache stores a snapshot in cache
func (s *MonitorService) setInCache(ctx context.Context, key string, result *domain.QueryResult) error {
	return s.cache.Set(ctx, key, result, s.cacheTTL)
}
