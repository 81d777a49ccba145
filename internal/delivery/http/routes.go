package http

import (
	"github.com/gin-gonic/gin"
	"github.com/pricewatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// Product names contain "/" (e.g. "USB/XLR"); route on the escaped path
	// so %2F stays inside the :name segment.
	router.UseRawPath = true
	router.UnescapePathValues = true

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	{
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.POST("/:name/check", handler.CheckPrices)
			products.GET("/:name/latest", handler.LatestPrices)
			products.GET("/:name/latest/export", handler.ExportLatest)
		}
	}

	return router
}
