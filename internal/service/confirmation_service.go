package service

import (
	"context"
	"fmt"

	"github.com/ignatzorin/fluxion-bot/internal/logger"
	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
)

// Decision - решение администратора по заявке на вывод. Значения совпадают
// с токенами callback-данных исходного бота.
type Decision string

const (
	DecisionAccept Decision = "terima"
	DecisionReject Decision = "tolak"
)

// Valid сообщает, что значение пришло из известного контрола.
func (d Decision) Valid() bool {
	return d == DecisionAccept || d == DecisionReject
}

// BackendStatus - статус, который ожидает бэкенд при фиксации решения.
func (d Decision) BackendStatus() string {
	if d == DecisionAccept {
		return "diterima"
	}
	return "ditolak"
}

// ConfirmBackend - часть клиента бэкенда, нужная подтверждению.
type ConfirmBackend interface {
	ConfirmWithdrawal(ctx context.Context, userID int64, amount int64, status string) error
}

// ConfirmationService завершает двойной контроль вывода: фиксирует решение
// администратора в бэкенде и уведомляет исходного пользователя.
//
// Контролы решения несут полный кортеж (userID, amount, decision), поэтому
// серверный поиск заявки при решении не нужен. Повторная активация контрола
// не дедуплицируется (принятый пробел): она повторит вызов бэкенда и
// уведомление, но никогда с другим решением - решение зашито в сам контрол.
type ConfirmationService struct {
	backend  ConfirmBackend
	notifier Notifier
}

// NewConfirmationService создаёт сервис подтверждения.
func NewConfirmationService(b ConfirmBackend, n Notifier) *ConfirmationService {
	return &ConfirmationService{backend: b, notifier: n}
}

// Resolve фиксирует решение по паре (userID, amount). При успехе бэкенда
// пользователь уведомляется best-effort: ошибка отправки логируется и не
// влияет на результат - авторитетная запись уже в бэкенде. При ошибке
// бэкенда уведомление не отправляется и повторов нет.
func (s *ConfirmationService) Resolve(ctx context.Context, userID int64, amount int64, decision Decision) error {
	if err := s.backend.ConfirmWithdrawal(ctx, userID, amount, decision.BackendStatus()); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeUpstream, "не удалось зафиксировать решение по выводу")
	}

	var text string
	if decision == DecisionAccept {
		text = fmt.Sprintf("✅ Penarikan kamu sebesar Rp %d telah *DITERIMA*.", amount)
	} else {
		text = fmt.Sprintf("❌ Penarikan kamu sebesar Rp %d *DITOLAK* oleh admin.", amount)
	}
	if err := s.notifier.SendMessage(userID, text); err != nil {
		logger.WithComponent("confirmation").
			WithField("user_id", userID).
			Warnf("не удалось уведомить пользователя о решении: %v", err)
	}
	return nil
}
