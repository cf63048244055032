package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/server/handlers"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Dashboard       *handlers.DashboardHandler
	Catalog         *handlers.CatalogHandler
	Prices          *handlers.PriceHandler
	Recommendations *handlers.RecommendationHandler
	Snapshots       *handlers.SnapshotHandler
	Webhook         *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/webhook", h.Webhook.Verify)
	r.POST("/webhook", h.Webhook.Receive)
	r.POST("/send-message", h.Webhook.SendMessage)

	api := r.Group("/api")
	{
		api.GET("/dashboard", h.Dashboard.Default)
		api.GET("/dashboard/:userId", h.Dashboard.ForUser)

		api.GET("/users", h.Catalog.ListUsers)
		api.POST("/users", h.Catalog.CreateUser)
		api.GET("/users/:id", h.Catalog.GetUser)

		api.GET("/crops", h.Catalog.ListCrops)
		api.POST("/crops", h.Catalog.CreateCrop)
		api.GET("/crops/:id", h.Catalog.GetCrop)

		api.GET("/markets", h.Catalog.ListMarkets)
		api.POST("/markets", h.Catalog.CreateMarket)
		api.GET("/markets/nearby", h.Catalog.NearbyMarkets)
		api.GET("/markets/compare", h.Catalog.CompareMarkets)
		api.GET("/markets/:id", h.Catalog.GetMarket)

		api.GET("/prices", h.Prices.List)
		api.POST("/prices", h.Prices.Create)
		api.GET("/prices/best", h.Prices.Best)
		api.POST("/prices/refresh", h.Prices.Refresh)
		api.GET("/prices/market/:marketId", h.Prices.ByMarket)
		api.GET("/prices/crop/:cropId", h.Prices.ByCrop)
		api.PATCH("/prices/:id", h.Prices.Update)

		api.GET("/price-history/:cropId", h.Prices.History)
		api.GET("/price-history/:cropId/export", h.Prices.Export)
		api.POST("/price-history", h.Prices.CreateHistory)
		api.GET("/chart-data/:cropId", h.Prices.Chart)

		api.GET("/recommendations", h.Recommendations.List)
		api.POST("/recommendations", h.Recommendations.Create)
		api.POST("/recommendations/:id/deactivate", h.Recommendations.Deactivate)

		api.GET("/snapshots", h.Snapshots.Recent)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
