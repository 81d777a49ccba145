package http

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pricewatch/backend/internal/domain"
	"github.com/pricewatch/backend/internal/infrastructure/export"
	"github.com/pricewatch/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	monitor *usecase.MonitorService
	version string
}

// NewHandler creates a new HTTP handler reporting the given build version.
// A nil monitor makes the price endpoints answer 501.
func NewHandler(monitor *usecase.MonitorService, version string) *Handler {
	return &Handler{monitor: monitor, version: version}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricewatch-backend",
		"version": h.version,
	})
}

// ListProducts returns the monitored catalog
func (h *Handler) ListProducts(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": h.monitor.Catalog().Products(),
	})
}

// CheckPrices runs a price check for the product named in the path
func (h *Handler) CheckPrices(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	result, err := h.monitor.CheckPrices(c.Request.Context(), productParam(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if len(result.Observations) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"warning": "No data retrieved - the answer contained no price line",
			"data":    result,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// LatestPrices returns the last cached snapshot for a product
func (h *Handler) LatestPrices(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	result, err := h.monitor.LatestResult(c.Request.Context(), productParam(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportLatest returns the last cached snapshot as an xlsx workbook
func (h *Handler) ExportLatest(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	result, err := h.monitor.LatestResult(c.Request.Context(), productParam(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, result); err != nil {
		log.Printf("[HTTP] Export failed for %q: %v", result.Product, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build workbook"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="prix-%s.xlsx"`, result.CapturedAt.Format("20060102-150405")))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// configured answers 501 when no monitor service is wired
func (h *Handler) configured(c *gin.Context) bool {
	if h.monitor == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Price monitoring not configured",
		})
		return false
	}
	return true
}

// respondError maps service errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found in catalog"})
	case errors.Is(err, domain.ErrNoSnapshot):
		c.JSON(http.StatusNotFound, gin.H{"error": "No price check has been run for this product yet"})
	case errors.Is(err, domain.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Completion API key not configured"})
	case errors.Is(err, domain.ErrUnauthorized):
		log.Printf("[HTTP] Completion API rejected credentials: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Completion API rejected credentials"})
	case errors.Is(err, domain.ErrRateLimited):
		log.Printf("[HTTP] Completion API rate limit reached: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Completion API rate limit reached, retry later"})
	case errors.Is(err, domain.ErrCompletionFailure):
		log.Printf("[HTTP] Completion API failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Completion API temporarily unavailable"})
	default:
		log.Printf("[HTTP] Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func productParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("name"))
}
