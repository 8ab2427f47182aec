package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/application/dashboard"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
)

// DashboardHandler serves the ranked series, statistics and tooltip
// endpoints.
type DashboardHandler struct {
	pipeline *dashboard.Service
	cfg      config.DashboardConfig
	log      logging.Logger
}

// NewDashboardHandler wires the dashboard endpoints.
func NewDashboardHandler(pipeline *dashboard.Service, cfg config.DashboardConfig, log logging.Logger) *DashboardHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DashboardHandler{pipeline: pipeline, cfg: cfg, log: log.Named("handler.dashboard")}
}

// Register mounts the dashboard routes on the given group.
func (h *DashboardHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard/ranking", h.Ranking)
	rg.GET("/dashboard/statistics", h.Statistics)
	rg.GET("/dashboard/tooltip/:code", h.Tooltip)
}

// Ranking serves GET /api/v1/dashboard/ranking?year=&sector=&lang=.
func (h *DashboardHandler) Ranking(c *gin.Context) {
	sel, err := parseSelection(c, h.cfg)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	result, err := h.pipeline.Ranking(c.Request.Context(), sel.Year, sel.Sector, sel.Lang)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Statistics serves GET /api/v1/dashboard/statistics?year=&sector=.
func (h *DashboardHandler) Statistics(c *gin.Context) {
	sel, err := parseSelection(c, h.cfg)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	st, err := h.pipeline.Statistics(c.Request.Context(), sel.Year, sel.Sector)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Tooltip serves GET /api/v1/dashboard/tooltip/:code?year=&sector=&lang=.
// Unknown codes still yield 200 with a "no data" tooltip.
func (h *DashboardHandler) Tooltip(c *gin.Context) {
	sel, err := parseSelection(c, h.cfg)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	tip, err := h.pipeline.Tooltip(c.Request.Context(), c.Param("code"), sel.Year, sel.Sector, sel.Lang)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tip)
}
