package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
)

type mockConfirmBackend struct {
	mock.Mock
}

func (m *mockConfirmBackend) ConfirmWithdrawal(ctx context.Context, userID int64, amount int64, status string) error {
	args := m.Called(ctx, userID, amount, status)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendMessage(userID int64, text string) error {
	args := m.Called(userID, text)
	return args.Error(0)
}

func TestDecision_Valid(t *testing.T) {
	assert.True(t, DecisionAccept.Valid())
	assert.True(t, DecisionReject.Valid())
	assert.False(t, Decision("batal").Valid())
	assert.False(t, Decision("").Valid())
}

func TestDecision_BackendStatus(t *testing.T) {
	assert.Equal(t, "diterima", DecisionAccept.BackendStatus())
	assert.Equal(t, "ditolak", DecisionReject.BackendStatus())
}

func TestConfirmationService_Resolve_AcceptNotifiesUser(t *testing.T) {
	b := new(mockConfirmBackend)
	n := new(mockNotifier)
	svc := NewConfirmationService(b, n)
	ctx := context.Background()

	b.On("ConfirmWithdrawal", ctx, int64(10), int64(150_000), "diterima").Return(nil)
	n.On("SendMessage", int64(10), "✅ Penarikan kamu sebesar Rp 150000 telah *DITERIMA*.").Return(nil)

	err := svc.Resolve(ctx, 10, 150_000, DecisionAccept)
	assert.NoError(t, err)
	b.AssertExpectations(t)
	n.AssertExpectations(t)
}

func TestConfirmationService_Resolve_RejectNotifiesUser(t *testing.T) {
	b := new(mockConfirmBackend)
	n := new(mockNotifier)
	svc := NewConfirmationService(b, n)
	ctx := context.Background()

	b.On("ConfirmWithdrawal", ctx, int64(10), int64(200_000), "ditolak").Return(nil)
	n.On("SendMessage", int64(10), "❌ Penarikan kamu sebesar Rp 200000 *DITOLAK* oleh admin.").Return(nil)

	err := svc.Resolve(ctx, 10, 200_000, DecisionReject)
	assert.NoError(t, err)
	n.AssertExpectations(t)
}

func TestConfirmationService_Resolve_BackendErrorSkipsNotification(t *testing.T) {
	b := new(mockConfirmBackend)
	n := new(mockNotifier)
	svc := NewConfirmationService(b, n)
	ctx := context.Background()

	b.On("ConfirmWithdrawal", ctx, int64(10), int64(150_000), "diterima").Return(errors.New("500"))

	err := svc.Resolve(ctx, 10, 150_000, DecisionAccept)
	assert.True(t, apperror.IsUpstream(err))
	// Решение не зафиксировано - пользователя не уведомляем.
	n.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestConfirmationService_Resolve_NotifyFailureIsSwallowed(t *testing.T) {
	b := new(mockConfirmBackend)
	n := new(mockNotifier)
	svc := NewConfirmationService(b, n)
	ctx := context.Background()

	b.On("ConfirmWithdrawal", ctx, int64(10), int64(150_000), "diterima").Return(nil)
	n.On("SendMessage", int64(10), mock.Anything).Return(errors.New("bot was blocked by the user"))

	// Авторитетная запись уже в бэкенде, сбой доставки не ошибка.
	assert.NoError(t, svc.Resolve(ctx, 10, 150_000, DecisionAccept))
}
