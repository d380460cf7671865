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

type mockGrantBackend struct {
	mock.Mock
}

func (m *mockGrantBackend) LookupUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockGrantBackend) SendPoints(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

const adminID int64 = 999

func newGrantFixture() (*mockGrantBackend, *mockNotifier, *session.Store, *GrantService) {
	b := new(mockGrantBackend)
	n := new(mockNotifier)
	store := session.NewStore()
	return b, n, store, NewGrantService(b, store, n)
}

func TestGrantService_EnterTarget_InvalidIDKeepsStep(t *testing.T) {
	_, _, store, svc := newGrantFixture()
	svc.Start(adminID)

	err := svc.EnterTarget(context.Background(), adminID, "bukan-angka")
	assert.ErrorIs(t, err, ErrInvalidUserID)
	assert.Equal(t, session.StepGrantUserID, store.Get(adminID).Step)
}

func TestGrantService_EnterTarget_UnknownUserKeepsStep(t *testing.T) {
	b, _, store, svc := newGrantFixture()
	svc.Start(adminID)

	b.On("LookupUser", mock.Anything, int64(42)).Return(apperror.ErrUserNotFound)

	err := svc.EnterTarget(context.Background(), adminID, "42")
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, session.StepGrantUserID, store.Get(adminID).Step)
}

func TestGrantService_EnterTarget_KnownUserAdvances(t *testing.T) {
	b, _, store, svc := newGrantFixture()
	svc.Start(adminID)

	b.On("LookupUser", mock.Anything, int64(42)).Return(nil)

	assert.NoError(t, svc.EnterTarget(context.Background(), adminID, "42"))
	st := store.Get(adminID)
	assert.Equal(t, session.StepGrantAmount, st.Step)
	assert.Equal(t, int64(42), st.TargetUserID)
}

func TestGrantService_EnterAmount_RejectsNonPositive(t *testing.T) {
	b, _, store, svc := newGrantFixture()
	svc.Start(adminID)
	b.On("LookupUser", mock.Anything, int64(42)).Return(nil)
	assert.NoError(t, svc.EnterTarget(context.Background(), adminID, "42"))

	for _, input := range []string{"abc", "0", "-5"} {
		_, _, err := svc.EnterAmount(context.Background(), adminID, input)
		assert.ErrorIs(t, err, ErrInvalidAmount, "ввод %q", input)
	}
	// Диалог остаётся на шаге суммы, админ может повторить.
	assert.Equal(t, session.StepGrantAmount, store.Get(adminID).Step)
	b.AssertNotCalled(t, "SendPoints", mock.Anything, mock.Anything, mock.Anything)
}

func TestGrantService_EnterAmount_SuccessNotifiesRecipient(t *testing.T) {
	b, n, store, svc := newGrantFixture()
	svc.Start(adminID)
	b.On("LookupUser", mock.Anything, int64(42)).Return(nil)
	assert.NoError(t, svc.EnterTarget(context.Background(), adminID, "42"))

	b.On("SendPoints", mock.Anything, int64(42), int64(500)).Return(nil)
	n.On("SendMessage", int64(42), "🎁 Kamu menerima bonus +500 poin!").Return(nil)

	target, amount, err := svc.EnterAmount(context.Background(), adminID, "500")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), target)
	assert.Equal(t, int64(500), amount)
	assert.Equal(t, session.StepNone, store.Get(adminID).Step)
	n.AssertExpectations(t)
}

func TestGrantService_EnterAmount_BackendErrorClearsFlow(t *testing.T) {
	b, n, store, svc := newGrantFixture()
	svc.Start(adminID)
	b.On("LookupUser", mock.Anything, int64(42)).Return(nil)
	assert.NoError(t, svc.EnterTarget(context.Background(), adminID, "42"))

	b.On("SendPoints", mock.Anything, int64(42), int64(500)).Return(errors.New("500"))

	_, _, err := svc.EnterAmount(context.Background(), adminID, "500")
	assert.True(t, apperror.IsUpstream(err))
	assert.Equal(t, session.StepNone, store.Get(adminID).Step)
	// Начисление не прошло - получателя не поздравляем.
	n.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestGrantService_EnterAmount_NotifyFailureIsSwallowed(t *testing.T) {
	b, n, _, svc := newGrantFixture()
	svc.Start(adminID)
	b.On("LookupUser", mock.Anything, int64(42)).Return(nil)
	assert.NoError(t, svc.EnterTarget(context.Background(), adminID, "42"))

	b.On("SendPoints", mock.Anything, int64(42), int64(500)).Return(nil)
	n.On("SendMessage", int64(42), mock.Anything).Return(errors.New("blocked"))

	_, _, err := svc.EnterAmount(context.Background(), adminID, "500")
	assert.NoError(t, err)
}

func TestGrantService_StepsRequireActiveFlow(t *testing.T) {
	_, _, _, svc := newGrantFixture()

	err := svc.EnterTarget(context.Background(), adminID, "42")
	assert.ErrorIs(t, err, ErrNoActiveFlow)
	_, _, err = svc.EnterAmount(context.Background(), adminID, "500")
	assert.ErrorIs(t, err, ErrNoActiveFlow)
}
