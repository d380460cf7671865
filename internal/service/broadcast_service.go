package service

import (
	"context"
	"time"

	"github.com/ignatzorin/fluxion-bot/internal/logger"
	"github.com/ignatzorin/fluxion-bot/internal/repository"
)

// broadcastText - текст ежедневной рассылки фаучета.
const broadcastText = "🚀 Selesaikan tugas hari ini di Fluxion Faucet dan raih bonus menarik 🎁. Jangan lewatkan kesempatanmu!"

// SubscriberSource - источник получателей рассылки.
type SubscriberSource interface {
	List(ctx context.Context) ([]repository.Subscriber, error)
}

// BroadcastService рассылает промо-сообщение всем локально
// зарегистрированным подписчикам. Каждая отправка best-effort: отказ
// одного получателя (заблокировал бота и т.п.) не прерывает рассылку.
type BroadcastService struct {
	subscribers SubscriberSource
	notifier    Notifier
}

// NewBroadcastService создаёт сервис рассылки.
func NewBroadcastService(subs SubscriberSource, n Notifier) *BroadcastService {
	return &BroadcastService{subscribers: subs, notifier: n}
}

// Run выполняет одну рассылку. Между отправками небольшая пауза, чтобы не
// упираться в лимиты Telegram на массовые отправки.
func (s *BroadcastService) Run(ctx context.Context) {
	log := logger.WithComponent("broadcast")

	subs, err := s.subscribers.List(ctx)
	if err != nil {
		log.Errorf("не удалось получить список подписчиков: %v", err)
		return
	}

	sent := 0
	for _, sub := range subs {
		if ctx.Err() != nil {
			log.Warnf("рассылка прервана: %v", ctx.Err())
			return
		}
		if err := s.notifier.SendMessage(sub.UserID, broadcastText); err == nil {
			sent++
		}
		time.Sleep(33 * time.Millisecond)
	}

	log.WithField("sent", sent).WithField("total", len(subs)).Info("рассылка завершена")
}
