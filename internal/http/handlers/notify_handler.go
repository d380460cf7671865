package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/fluxion-bot/internal/logger"
	"github.com/ignatzorin/fluxion-bot/internal/service"
)

// NotifyHandler принимает push-уведомления от бэкенда фаучета и
// пересылает их пользователям в Telegram.
type NotifyHandler struct {
	notifier service.Notifier
}

func NewNotifyHandler(n service.Notifier) *NotifyHandler {
	return &NotifyHandler{notifier: n}
}

// NotifyRequest - тело запроса POST /notif.
type NotifyRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Pesan  string `json:"pesan" binding:"required"`
}

// Notify обрабатывает POST /notif.
func (h *NotifyHandler) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "невалидное тело запроса"})
		return
	}

	if err := h.notifier.SendMessage(req.UserID, req.Pesan); err != nil {
		logger.WithComponent("notify").WithError(err).
			WithField("user_id", req.UserID).
			Warn("не удалось доставить уведомление")
		// Telegram отклоняет отправку, если пользователь заблокировал бота;
		// для бэкенда это не ошибка сервера.
		c.JSON(http.StatusBadGateway, gin.H{"error": "не удалось доставить сообщение"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
