package main

import (
	"fmt"
	"log"

	httpDelivery "github.com/pricewatch/backend/internal/delivery/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Printf("Starting PriceWatch Backend v%s", version)
		log.Printf("Environment: %s", cfg.Server.Environment)
		log.Printf("Port: %s", cfg.Server.Port)
		log.Printf("Cache Type: %s (TTL %s)", cfg.Cache.Type, cfg.Cache.TTL)

		monitor, closeCache, err := newMonitor(cfg)
		if err != nil {
			return err
		}
		defer closeCache()

		if cfg.HasAPIKey() {
			log.Printf("Perplexity API configured: %s model=%s (key: %s)", cfg.Perplexity.BaseURL, cfg.Perplexity.Model, maskKey(cfg.Perplexity.APIKey))
		} else {
			log.Printf("WARNING: Perplexity API key NOT CONFIGURED - price checks will answer 503")
		}

		log.Printf("Catalog: %d products, concurrency=%d, rate limit=%d/min per IP",
			monitor.Catalog().Len(), cfg.Monitor.Concurrency, cfg.RateLimit.PerIP)

		handler := httpDelivery.NewHandler(monitor, version)
		router := httpDelivery.SetupRouter(cfg, handler)

		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("Server listening on %s", addr)

		if err := router.Run(addr); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	},
}
