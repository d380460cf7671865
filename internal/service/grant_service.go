package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ignatzorin/fluxion-bot/internal/logger"
	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
	"github.com/ignatzorin/fluxion-bot/internal/session"
)

// ErrInvalidUserID - ввод не парсится как идентификатор пользователя;
// состояние не меняется.
var ErrInvalidUserID = errors.New("user id должен быть числом")

// GrantBackend - часть клиента бэкенда, нужная начислению поинтов.
type GrantBackend interface {
	LookupUser(ctx context.Context, userID int64) error
	SendPoints(ctx context.Context, userID int64, amount int64) error
}

// GrantService ведёт админский двухшаговый диалог начисления поинтов:
// idle → waiting_userid → waiting_amount → idle. Проверку, что диалог
// запускает именно администратор, делает транспортный слой - сюда
// не-админ не попадает.
type GrantService struct {
	backend  GrantBackend
	sessions *session.Store
	notifier Notifier
}

// NewGrantService создаёт сервис начисления.
func NewGrantService(b GrantBackend, sessions *session.Store, n Notifier) *GrantService {
	return &GrantService{backend: b, sessions: sessions, notifier: n}
}

// Start открывает диалог, перезаписывая любое прежнее состояние админа.
func (s *GrantService) Start(adminID int64) {
	s.sessions.Begin(adminID, session.StepGrantUserID)
}

// EnterTarget принимает идентификатор получателя. Существование получателя
// проверяется в бэкенде до запроса суммы; при недоступности бэкенда или
// неизвестном id шаг не продвигается.
func (s *GrantService) EnterTarget(ctx context.Context, adminID int64, text string) error {
	st := s.sessions.Get(adminID)
	if st.Step != session.StepGrantUserID {
		return ErrNoActiveFlow
	}

	target, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return ErrInvalidUserID
	}

	if err := s.backend.LookupUser(ctx, target); err != nil {
		return err
	}

	st.TargetUserID = target
	st.Step = session.StepGrantAmount
	s.sessions.Set(adminID, st)
	return nil
}

// EnterAmount принимает строго положительную сумму и начисляет поинты.
// Невалидная сумма оставляет диалог на этом же шаге. После обращения к
// бэкенду состояние очищается в любом случае; при успехе получатель
// уведомляется best-effort (ошибка отправки глотается).
func (s *GrantService) EnterAmount(ctx context.Context, adminID int64, text string) (int64, int64, error) {
	st := s.sessions.Get(adminID)
	if st.Step != session.StepGrantAmount {
		return 0, 0, ErrNoActiveFlow
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}

	target := st.TargetUserID
	err = s.backend.SendPoints(ctx, target, amount)
	s.sessions.Clear(adminID)
	if err != nil {
		return 0, 0, apperror.Wrap(err, apperror.ErrCodeUpstream, "не удалось начислить поинты")
	}

	if err := s.notifier.SendMessage(target, fmt.Sprintf("🎁 Kamu menerima bonus +%d poin!", amount)); err != nil {
		logger.WithComponent("grant").
			WithField("user_id", target).
			Warnf("не удалось уведомить получателя о бонусе: %v", err)
	}

	return target, amount, nil
}
