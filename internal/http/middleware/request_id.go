package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/fluxion-bot/internal/logger"
)

const ContextRequestIDKey = "requestID"

// RequestIDMiddleware присваивает каждому запросу идентификатор и
// логирует завершение запроса с ним. Клиентский X-Request-ID уважается,
// чтобы связывать логи с бэкендом фаучета.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     c.Writer.Status(),
			}).Info("запрос обработан")
		}
	}
}
