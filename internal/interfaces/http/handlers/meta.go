package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/application/dashboard"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
)

// MetaHandler serves the picker metadata: available years and sectors.
type MetaHandler struct {
	pipeline *dashboard.Service
	cfg      config.DashboardConfig
	log      logging.Logger
}

// NewMetaHandler wires the metadata endpoints.
func NewMetaHandler(pipeline *dashboard.Service, cfg config.DashboardConfig, log logging.Logger) *MetaHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MetaHandler{pipeline: pipeline, cfg: cfg, log: log.Named("handler.meta")}
}

// Register mounts the metadata routes on the given group.
func (h *MetaHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/meta/years", h.Years)
	rg.GET("/meta/sectors", h.Sectors)
}

// Years serves GET /api/v1/meta/years: the years present in the active
// dataset, ascending.
func (h *MetaHandler) Years(c *gin.Context) {
	years, err := h.pipeline.Years(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// Sectors serves GET /api/v1/meta/sectors?lang=: the selectable sectors with
// localized labels.
func (h *MetaHandler) Sectors(c *gin.Context) {
	lang, err := geo.ParseLanguage(c.Query("lang"), geo.Language(h.cfg.DefaultLanguage))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sectors": h.pipeline.Sectors(lang)})
}
