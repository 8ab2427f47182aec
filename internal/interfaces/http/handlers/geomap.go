package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/application/geomap"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/colorscale"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// GeomapHandler serves the choropleth color endpoints.
type GeomapHandler struct {
	service *geomap.Service
	cfg     config.DashboardConfig
	log     logging.Logger
}

// NewGeomapHandler wires the map endpoints.
func NewGeomapHandler(service *geomap.Service, cfg config.DashboardConfig, log logging.Logger) *GeomapHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &GeomapHandler{service: service, cfg: cfg, log: log.Named("handler.geomap")}
}

// Register mounts the map routes on the given group.
func (h *GeomapHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/map/colors", h.Colors)
	rg.POST("/map/feature-color", h.FeatureColor)
}

// Colors serves GET /api/v1/map/colors?year=&sector=&lang=: the full fill
// color index for one selection.
func (h *GeomapHandler) Colors(c *gin.Context) {
	sel, err := parseSelection(c, h.cfg)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	idx, err := h.service.ColorIndex(c.Request.Context(), sel.Year, sel.Sector, sel.Lang)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, idx)
}

// featureColorRequest is the body of POST /api/v1/map/feature-color: the
// properties bag of one GeoJSON feature.
type featureColorRequest struct {
	Properties map[string]interface{} `json:"properties"`
}

// featureColorResponse is the fill color for the posted feature.
type featureColorResponse struct {
	Color colorscale.Color `json:"color"`
}

// FeatureColor resolves the fill color for a single GeoJSON feature's
// properties. Unidentifiable features get the no-data color with a 200.
func (h *GeomapHandler) FeatureColor(c *gin.Context) {
	sel, err := parseSelection(c, h.cfg)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req featureColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, errors.InvalidParam("request body is not a feature properties object").WithCause(err))
		return
	}

	color, err := h.service.FeatureColor(c.Request.Context(), req.Properties, sel.Year, sel.Sector)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, featureColorResponse{Color: color})
}
