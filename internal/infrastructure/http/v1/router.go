// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storeops/internal/domain/stocktake"
	"storeops/internal/infrastructure/http/v1/handlers"
	"storeops/internal/infrastructure/http/v1/middleware"
	"storeops/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Logger *logger.Logger

	// Stocktake is the check lifecycle service.
	Stocktake *stocktake.Service

	// ReadyProbe feeds /health/ready; nil means always ready.
	ReadyProbe handlers.ReadyProbe

	// CORSOrigins lists allowed origins; empty disables CORS handling.
	CORSOrigins []string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: recovery outermost, then tracing so the logger and
	// error middleware see trace ids.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.HeaderRequestID, middleware.HeaderTraceID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	handlers.NewHealthHandler(cfg.ReadyProbe).Register(router)

	api := router.Group("/api/v1")
	{
		base := handlers.NewBaseHandler()
		handlers.NewStocktakeHandler(base, cfg.Stocktake).Register(api)
	}

	return router
}
