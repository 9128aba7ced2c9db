package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"realty_notify/internal/config"
	"realty_notify/internal/http/controller"
	"realty_notify/internal/http/middleware"
	"realty_notify/internal/ws"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, live *ws.Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		otelgin.Middleware(cfg.OTELServiceName),
		middleware.ZapLogger(logger),
		middleware.ZapRecovery(logger),
	)

	router.GET("/health", func(c *gin.Context) {
		c.Status(200)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/notifications", handler.CreateNotification)
	router.POST("/notifications/publish", handler.PublishNotification)
	router.PATCH("/notifications/:id/read", handler.MarkRead)

	router.GET("/brokers", handler.ListBrokers)
	router.POST("/brokers", handler.UpsertBroker)
	router.GET("/brokers/:broker/notifications", handler.Inbox)
	router.POST("/brokers/:broker/notifications/read", handler.MarkAllRead)

	router.GET("/ws", live.Serve)
	router.GET("/sse/:broker", handler.SSE)

	return router
}
