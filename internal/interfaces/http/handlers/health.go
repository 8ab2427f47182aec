package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/application/dashboard"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
)

// Pinger checks a dependency's reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	provider dashboard.DatasetProvider
	cache    Pinger
	log      logging.Logger
}

// NewHealthHandler wires the probes. cache may be nil when the service runs
// without Redis.
func NewHealthHandler(provider dashboard.DatasetProvider, cache Pinger, log logging.Logger) *HealthHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &HealthHandler{provider: provider, cache: cache, log: log.Named("handler.health")}
}

// Register mounts the probes at the engine root, outside /api/v1.
func (h *HealthHandler) Register(e *gin.Engine) {
	e.GET("/healthz", h.Liveness)
	e.GET("/readyz", h.Readiness)
}

// Liveness serves GET /healthz: the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness serves GET /readyz: the service can answer pipeline requests.
// Not ready until a dataset is active; a dead cache degrades to not ready
// too, since every request would then recompute.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if _, err := h.provider.Current(); err != nil {
		checks["dataset"] = "no active dataset"
		ready = false
	} else {
		checks["dataset"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			h.log.Warn("cache unreachable", logging.Err(err))
			checks["cache"] = "unreachable"
			ready = false
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
