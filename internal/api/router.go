package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quentin/tickvault/internal/api/handler"
	"github.com/quentin/tickvault/internal/api/middleware"
	"github.com/quentin/tickvault/internal/logger"
	"github.com/quentin/tickvault/internal/repository"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	jobs *repository.JobRepository,
	gatherer prometheus.Gatherer,
	log *logger.Logger,
	mode string,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	jobsHandler := handler.NewJobsHandler(jobs)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Observability sink
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Jobs
		v1.GET("/jobs", jobsHandler.ListByState)
		v1.GET("/jobs/history", jobsHandler.History)
		v1.GET("/jobs/:id", jobsHandler.Get)
	}

	return r
}
