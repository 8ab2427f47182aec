// Package http assembles the gin engine and the HTTP server around the
// application services.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/application/dashboard"
	"github.com/turtacn/RD-Observatory/internal/application/geomap"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RD-Observatory/internal/interfaces/http/handlers"
	"github.com/turtacn/RD-Observatory/internal/interfaces/http/middleware"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Pipeline  *dashboard.Service
	Geomap    *geomap.Service
	Provider  dashboard.DatasetProvider
	CachePing handlers.Pinger

	Dashboard config.DashboardConfig
	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector
}

// NewRouter builds the gin engine: middleware chain, API routes, probes and
// the metrics endpoint.
func NewRouter(cfg config.ServerConfig, deps RouterDeps) *gin.Engine {
	gin.SetMode(ginMode(cfg.Mode))

	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = prometheus.NewAppMetrics(prometheus.NewNopCollector())
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogging(log),
		middleware.Metrics(metrics),
		middleware.CORS(),
	)

	handlers.NewHealthHandler(deps.Provider, deps.CachePing, log).Register(engine)
	if deps.Collector != nil {
		engine.GET("/metrics", gin.WrapH(deps.Collector.Handler()))
	}

	api := engine.Group("/api/v1")
	handlers.NewDashboardHandler(deps.Pipeline, deps.Dashboard, log).Register(api)
	handlers.NewGeomapHandler(deps.Geomap, deps.Dashboard, log).Register(api)
	handlers.NewMetaHandler(deps.Pipeline, deps.Dashboard, log).Register(api)

	return engine
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
