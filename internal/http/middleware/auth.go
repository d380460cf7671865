package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/fluxion-bot/internal/service"
)

// Context ключи для gin.Context.
const ContextServiceKey = "service"

// ServiceAuthMiddleware проверяет сервисный JWT токен. API уведомлений
// доступен только доверенным сервисам (бэкенду фаучета), не конечным
// пользователям.
func ServiceAuthMiddleware(tokens *service.ServiceTokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		svc, err := tokens.Parse(raw)
		if err != nil || svc == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(ContextServiceKey, svc)
		c.Next()
	}
}
