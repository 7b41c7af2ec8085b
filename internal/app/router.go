package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"trips/internal/handler"
	"trips/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	MetricsHandler *handler.MetricsHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	Logger         *logrus.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Correlation id first so every later middleware and handler sees it.
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationMiddleware())
	router.Use(middleware.RequestLogger(deps.Logger))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", deps.MetricsHandler.Snapshot)

	v1 := router.Group("/v1")
	{
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.GetAll)
			trips.POST("/calculate", deps.TripHandler.CalculateFare)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/assign", deps.TripHandler.AssignTrip)
			trips.POST("/:id/accept", deps.TripHandler.AcceptTrip)
			trips.POST("/:id/complete", deps.TripHandler.CompleteTrip)
			trips.POST("/:id/cancel", deps.TripHandler.CancelTrip)
			trips.POST("/:id/refund", deps.TripHandler.RefundTrip)
		}
	}

	return router
}
