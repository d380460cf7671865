package service

import (
	"context"

	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
	"github.com/ignatzorin/fluxion-bot/internal/session"
)

// VerificationBackend - часть клиента бэкенда, нужная верификации.
type VerificationBackend interface {
	SubmitVerification(ctx context.Context, userID int64, input string) error
}

// VerificationService принимает произвольные верификационные данные
// пользователя одним сообщением: verify:waiting_input → idle.
type VerificationService struct {
	backend  VerificationBackend
	sessions *session.Store
}

// NewVerificationService создаёт сервис верификации.
func NewVerificationService(b VerificationBackend, sessions *session.Store) *VerificationService {
	return &VerificationService{backend: b, sessions: sessions}
}

// Start ожидает следующее текстовое сообщение пользователя.
func (s *VerificationService) Start(userID int64) {
	s.sessions.Begin(userID, session.StepVerifyInput)
}

// Submit отправляет данные в бэкенд. Состояние очищается в любом случае -
// при сбое пользователь начинает заново, застрявших диалогов не остаётся.
func (s *VerificationService) Submit(ctx context.Context, userID int64, input string) error {
	st := s.sessions.Get(userID)
	if st.Step != session.StepVerifyInput {
		return ErrNoActiveFlow
	}

	err := s.backend.SubmitVerification(ctx, userID, input)
	s.sessions.Clear(userID)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeUpstream, "не удалось сохранить верификацию")
	}
	return nil
}
