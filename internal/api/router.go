// Package api wires the HTTP handlers into a gin router.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mining-dispatch/internal/api/handlers"
	"mining-dispatch/internal/api/middleware"
	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/strategy"
)

type RouterConfig struct {
	AllowedOrigins []string
	Release        bool
}

func NewRouter(cfg RouterConfig, deps handlers.Deps) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
		deps.Log = log
	}
	if deps.Registry == nil {
		deps.Registry = strategy.Default()
	}

	router := gin.New()
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler(log))

	backtestHandler := handlers.NewBacktestHandler(deps)
	strategyHandler := handlers.NewStrategyHandler(deps.Registry)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/backtest", backtestHandler.RunBacktest)
		v1.GET("/backtest/:id/ledger", backtestHandler.GetLedger)
		v1.POST("/backtest/compare", backtestHandler.CompareBacktests)

		v1.GET("/strategies", strategyHandler.ListStrategies)
		v1.GET("/contract-blocks", handlers.ListContractBlocks)
		v1.GET("/market/stats", backtestHandler.MarketStats)

		if deps.Facilities != nil {
			v1.GET("/facilities", deps.Facilities.ListFacilities)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})

	return router
}
