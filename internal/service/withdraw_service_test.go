package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/fluxion-bot/internal/backend"
	"github.com/ignatzorin/fluxion-bot/internal/eligibility"
	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
	"github.com/ignatzorin/fluxion-bot/internal/session"
)

type mockWithdrawBackend struct {
	mock.Mock
}

func (m *mockWithdrawBackend) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockWithdrawBackend) SubmitWithdrawal(ctx context.Context, req backend.WithdrawalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type mockGate struct {
	mock.Mock
}

func (m *mockGate) Check(ctx context.Context, userID int64) eligibility.Result {
	args := m.Called(ctx, userID)
	return args.Get(0).(eligibility.Result)
}

func newWithdrawFixture() (*mockWithdrawBackend, *mockGate, *session.Store, *WithdrawService) {
	b := new(mockWithdrawBackend)
	g := new(mockGate)
	store := session.NewStore()
	return b, g, store, NewWithdrawService(b, g, store)
}

// runToAmountStep доводит пользователя до шага ввода суммы.
func runToAmountStep(t *testing.T, svc *WithdrawService, g *mockGate, userID int64) {
	t.Helper()
	g.On("Check", mock.Anything, userID).Return(eligibility.Result{Eligible: true}).Once()
	svc.Start(context.Background(), userID)
	assert.NoError(t, svc.ChooseMethod(userID, "DANA"))
	assert.NoError(t, svc.EnterNumber(userID, "081234567890"))
}

func TestWithdrawService_Start_EligibleOpensFlow(t *testing.T) {
	_, g, store, svc := newWithdrawFixture()
	g.On("Check", mock.Anything, int64(1)).Return(eligibility.Result{Eligible: true})

	res := svc.Start(context.Background(), 1)
	assert.True(t, res.Eligible)
	assert.Equal(t, session.StepWithdrawMethod, store.Get(1).Step)
}

func TestWithdrawService_Start_IneligibleKeepsIdle(t *testing.T) {
	_, g, store, svc := newWithdrawFixture()
	g.On("Check", mock.Anything, int64(1)).Return(eligibility.Result{Eligible: false, ReferralCount: 2, RequiredCount: 7})

	res := svc.Start(context.Background(), 1)
	assert.False(t, res.Eligible)
	assert.Equal(t, 2, res.ReferralCount)
	assert.Equal(t, 7, res.RequiredCount)
	assert.Equal(t, session.StepNone, store.Get(1).Step)

	// Без открытого диалога шаги отклоняются.
	assert.ErrorIs(t, svc.ChooseMethod(1, "DANA"), ErrNoActiveFlow)
}

func TestWithdrawService_Start_RestartOverwritesFlow(t *testing.T) {
	_, g, store, svc := newWithdrawFixture()
	g.On("Check", mock.Anything, int64(1)).Return(eligibility.Result{Eligible: true})

	svc.Start(context.Background(), 1)
	assert.NoError(t, svc.ChooseMethod(1, "OVO"))
	assert.NoError(t, svc.EnterNumber(1, "0857"))

	// Повторный Start сбрасывает накопленные шаги.
	svc.Start(context.Background(), 1)
	st := store.Get(1)
	assert.Equal(t, session.StepWithdrawMethod, st.Step)
	assert.Empty(t, st.Method)
	assert.Empty(t, st.Number)
}

func TestWithdrawService_ChooseMethod_UnknownKeepsStep(t *testing.T) {
	_, g, store, svc := newWithdrawFixture()
	g.On("Check", mock.Anything, int64(1)).Return(eligibility.Result{Eligible: true})
	svc.Start(context.Background(), 1)

	assert.ErrorIs(t, svc.ChooseMethod(1, "PAYPAL"), ErrUnknownMethod)
	assert.Equal(t, session.StepWithdrawMethod, store.Get(1).Step)

	// Метод нечувствителен к регистру.
	assert.NoError(t, svc.ChooseMethod(1, "gopay"))
	assert.Equal(t, "GOPAY", store.Get(1).Method)
}

func TestWithdrawService_EnterAmount_NotNumberKeepsStep(t *testing.T) {
	_, g, store, svc := newWithdrawFixture()
	runToAmountStep(t, svc, g, 1)

	_, err := svc.EnterAmount(context.Background(), 1, "seratus ribu")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	// Пользователь остаётся на шаге суммы и может повторить ввод.
	assert.Equal(t, session.StepWithdrawAmount, store.Get(1).Step)
}

func TestWithdrawService_EnterAmount_BelowMinSkipsBalanceFetch(t *testing.T) {
	b, g, store, svc := newWithdrawFixture()
	runToAmountStep(t, svc, g, 1)

	_, err := svc.EnterAmount(context.Background(), 1, "50000")
	assert.ErrorIs(t, err, ErrMinWithdrawalAmount)
	assert.Equal(t, session.StepNone, store.Get(1).Step)
	// Минимум проверяется до похода за балансом.
	b.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything)
	b.AssertNotCalled(t, "SubmitWithdrawal", mock.Anything, mock.Anything)
}

func TestWithdrawService_EnterAmount_InsufficientBalance(t *testing.T) {
	b, g, store, svc := newWithdrawFixture()
	runToAmountStep(t, svc, g, 1)

	b.On("GetBalance", mock.Anything, int64(1)).Return(int64(120_000), nil)

	_, err := svc.EnterAmount(context.Background(), 1, "150000")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, session.StepNone, store.Get(1).Step)
	b.AssertNotCalled(t, "SubmitWithdrawal", mock.Anything, mock.Anything)
}

func TestWithdrawService_EnterAmount_BalanceErrorAborts(t *testing.T) {
	b, g, store, svc := newWithdrawFixture()
	runToAmountStep(t, svc, g, 1)

	b.On("GetBalance", mock.Anything, int64(1)).Return(int64(0), errors.New("502"))

	_, err := svc.EnterAmount(context.Background(), 1, "150000")
	assert.True(t, apperror.IsUpstream(err))
	assert.Equal(t, session.StepNone, store.Get(1).Step)
}

func TestWithdrawService_EnterAmount_Success(t *testing.T) {
	b, g, store, svc := newWithdrawFixture()
	runToAmountStep(t, svc, g, 42)

	b.On("GetBalance", mock.Anything, int64(42)).Return(int64(500_000), nil)
	b.On("SubmitWithdrawal", mock.Anything, backend.WithdrawalRequest{
		UserID: "42",
		Amount: 150_000,
		Method: "DANA",
		Number: "081234567890",
	}).Return(nil)

	pending, err := svc.EnterAmount(context.Background(), 42, "150000")
	assert.NoError(t, err)
	assert.Equal(t, &PendingWithdrawal{
		UserID: 42,
		Amount: 150_000,
		Method: "DANA",
		Number: "081234567890",
	}, pending)
	assert.Equal(t, session.StepNone, store.Get(42).Step)
	b.AssertExpectations(t)
}

func TestWithdrawService_EnterAmount_SubmitErrorClearsFlow(t *testing.T) {
	b, g, store, svc := newWithdrawFixture()
	runToAmountStep(t, svc, g, 1)

	b.On("GetBalance", mock.Anything, int64(1)).Return(int64(500_000), nil)
	b.On("SubmitWithdrawal", mock.Anything, mock.Anything).Return(errors.New("503"))

	pending, err := svc.EnterAmount(context.Background(), 1, "150000")
	assert.Nil(t, pending)
	assert.True(t, apperror.IsUpstream(err))
	// Диалог очищен даже при ошибке, пользователь не застревает.
	assert.Equal(t, session.StepNone, store.Get(1).Step)
}

func TestWithdrawService_StepsRejectOutOfOrderInput(t *testing.T) {
	_, g, _, svc := newWithdrawFixture()
	g.On("Check", mock.Anything, int64(1)).Return(eligibility.Result{Eligible: true})
	svc.Start(context.Background(), 1)

	// На шаге выбора метода ни номер, ни сумма не принимаются.
	assert.ErrorIs(t, svc.EnterNumber(1, "0812"), ErrNoActiveFlow)
	_, err := svc.EnterAmount(context.Background(), 1, "150000")
	assert.ErrorIs(t, err, ErrNoActiveFlow)
}
