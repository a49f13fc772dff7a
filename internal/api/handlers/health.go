package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/football-site/internal/cache"
	"github.com/stitts-dev/football-site/internal/services"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusReporter contributes a section to the readiness report.
type StatusReporter interface {
	GetStatus() map[string]interface{}
}

type HealthHandler struct {
	cache    *cache.ResponseCache
	store    Pinger
	breakers func() map[string]services.BreakerStatus
	warmer   StatusReporter
}

// NewHealthHandler builds the probes. breakers and warmer may be nil.
func NewHealthHandler(respCache *cache.ResponseCache, store Pinger, breakers func() map[string]services.BreakerStatus, warmer StatusReporter) *HealthHandler {
	return &HealthHandler{
		cache:    respCache,
		store:    store,
		breakers: breakers,
		warmer:   warmer,
	}
}

// GetHealth always returns 200 while the process is serving.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"service": "football-site",
	})
}

// GetReady returns 200 once the favorites store answers. Cache statistics, breaker
// states and the warmer status are reported either way.
func (h *HealthHandler) GetReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{}
	status := http.StatusOK
	body["status"] = "ready"

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "not_ready"
			body["store"] = gin.H{"status": "down", "error": err.Error()}
		} else {
			body["store"] = gin.H{"status": "up"}
		}
	}
	if h.cache != nil {
		body["cache"] = h.cache.Stats()
	}
	if h.breakers != nil {
		body["circuit_breakers"] = h.breakers()
	}
	if h.warmer != nil {
		body["cache_warmer"] = h.warmer.GetStatus()
	}

	c.JSON(status, body)
}
