package main

import (
	"log"

	"github.com/pricewatch/backend/config"
	"github.com/pricewatch/backend/internal/domain"
	"github.com/pricewatch/backend/internal/infrastructure/cache"
	"github.com/pricewatch/backend/internal/infrastructure/perplexity"
	"github.com/pricewatch/backend/internal/usecase"
)

// newMonitor wires the cache, the completion client and the monitor service.
// The returned func releases the cache janitor.
func newMonitor(cfg *config.Config) (*usecase.MonitorService, func(), error) {
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return nil, nil, err
	}

	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)

	var client domain.CompletionClient
	if cfg.HasAPIKey() {
		perplexityClient := perplexity.NewClient(cfg.Perplexity.APIKey, cfg.Perplexity.BaseURL, cfg.Perplexity.Model, cfg.Perplexity.Timeout)

		// Enable debug mode in development environment
		if cfg.Server.Environment == "development" && cfg.Monitor.EnableDebugLogging {
			perplexityClient.SetDebug(true)
			log.Printf("Perplexity client debug mode enabled")
		}
		client = perplexityClient
	}

	monitor := usecase.NewMonitorService(catalog, memoryCache, client, usecase.MonitorServiceConfig{
		CacheTTL:           cfg.Cache.TTL,
		Concurrency:        cfg.Monitor.Concurrency,
		EnableDebugLogging: cfg.Monitor.EnableDebugLogging,
	})

	return monitor, memoryCache.Close, nil
}

// maskKey shows only the first characters of an API key
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:8] + "..."
}
