package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/fluxion-bot/internal/config"
	"github.com/ignatzorin/fluxion-bot/internal/http/handlers"
	"github.com/ignatzorin/fluxion-bot/internal/http/middleware"
	"github.com/ignatzorin/fluxion-bot/internal/service"
)

// SetupRouter собирает HTTP API бота: health check и приём push-уведомлений
// от бэкенда фаучета.
func SetupRouter(
	cfg *config.Config,
	notifyHandler *handlers.NotifyHandler,
	healthHandler *handlers.HealthHandler,
	tokens *service.ServiceTokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())

	r.GET("/health", healthHandler.Health)

	notif := r.Group("/notif")
	notif.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	notif.Use(middleware.ServiceAuthMiddleware(tokens))
	{
		notif.POST("", notifyHandler.Notify)
	}

	return r
}
