package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mdiasanta/req-hunter/internal/api/handler"
	"github.com/mdiasanta/req-hunter/internal/api/middleware"
	"github.com/mdiasanta/req-hunter/internal/config"
	"github.com/mdiasanta/req-hunter/internal/scheduler"
	"github.com/mdiasanta/req-hunter/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	DB        *gorm.DB
	Sources   *service.SourceService
	Jobs      *service.JobService
	Scrape    *service.ScrapeService
	Scheduler *scheduler.Scheduler
	LogFile   string
	Gatherer  prometheus.Gatherer // nil disables /metrics
}

// SetupRouter configures the Gin router with all routes.
// Parameters:
//   - deps: services backing the handlers.
//   - cfg: application configuration.
//
// Returns:
//   - *gin.Engine: configured router.
func SetupRouter(deps Deps, cfg *config.Config) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.Server.CORS))

	healthHandler := handler.NewHealthHandler(deps.DB)
	sourceHandler := handler.NewSourceHandler(deps.Sources)
	jobHandler := handler.NewJobHandler(deps.Jobs)
	scheduleHandler := handler.NewScheduleHandler(deps.Scheduler)
	scrapeHandler := handler.NewScrapeHandler(deps.Scrape)
	logsHandler := handler.NewLogsHandler(deps.LogFile)

	r.GET("/health", healthHandler.Health)

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		sources := api.Group("/sources")
		sources.GET("", sourceHandler.List)
		sources.POST("", sourceHandler.Create)
		sources.GET("/:id", sourceHandler.Get)
		sources.PATCH("/:id", sourceHandler.Update)
		sources.DELETE("/:id", sourceHandler.Delete)
		sources.POST("/:id/block", sourceHandler.Block)

		jobs := api.Group("/jobs")
		jobs.GET("", jobHandler.List)
		jobs.GET("/:id", jobHandler.Get)
		jobs.PATCH("/:id", jobHandler.UpdateStatus)

		api.GET("/schedule", scheduleHandler.Get)
		api.PATCH("/schedule", scheduleHandler.Update)

		api.POST("/scrape/run", scrapeHandler.RunAll)
		api.POST("/scrape/run/:id", scrapeHandler.RunSource)

		api.GET("/logs", logsHandler.Tail)
	}

	return r
}
