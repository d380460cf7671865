package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
	"github.com/ignatzorin/fluxion-bot/internal/session"
)

type mockVerificationBackend struct {
	mock.Mock
}

func (m *mockVerificationBackend) SubmitVerification(ctx context.Context, userID int64, input string) error {
	args := m.Called(ctx, userID, input)
	return args.Error(0)
}

func TestVerificationService_SubmitRequiresActiveFlow(t *testing.T) {
	b := new(mockVerificationBackend)
	store := session.NewStore()
	svc := NewVerificationService(b, store)

	err := svc.Submit(context.Background(), 1, "data saya")
	assert.ErrorIs(t, err, ErrNoActiveFlow)
	b.AssertNotCalled(t, "SubmitVerification", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerificationService_SubmitSuccess(t *testing.T) {
	b := new(mockVerificationBackend)
	store := session.NewStore()
	svc := NewVerificationService(b, store)

	svc.Start(1)
	b.On("SubmitVerification", mock.Anything, int64(1), "KTP 1234").Return(nil)

	assert.NoError(t, svc.Submit(context.Background(), 1, "KTP 1234"))
	assert.Equal(t, session.StepNone, store.Get(1).Step)
}

func TestVerificationService_SubmitErrorStillClearsFlow(t *testing.T) {
	b := new(mockVerificationBackend)
	store := session.NewStore()
	svc := NewVerificationService(b, store)

	svc.Start(1)
	b.On("SubmitVerification", mock.Anything, int64(1), "KTP 1234").Return(errors.New("503"))

	err := svc.Submit(context.Background(), 1, "KTP 1234")
	assert.True(t, apperror.IsUpstream(err))
	assert.Equal(t, session.StepNone, store.Get(1).Step)
}
