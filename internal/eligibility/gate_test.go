package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/fluxion-bot/internal/backend"
)

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) GetApprovalStatus(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockChecker) GetReferrals(ctx context.Context, userID int64) (*backend.Referrals, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Referrals), args.Error(1)
}

func refsOfLen(n int) *backend.Referrals {
	list := make([]json.RawMessage, n)
	for i := range list {
		list[i] = json.RawMessage(`{}`)
	}
	return &backend.Referrals{List: list, Jumlah: n}
}

func TestGate_ApprovedUserIsEligible(t *testing.T) {
	checker := new(mockChecker)
	gate := NewGate(checker)
	ctx := context.Background()

	checker.On("GetApprovalStatus", ctx, int64(1)).Return(true, nil)

	res := gate.Check(ctx, 1)
	assert.True(t, res.Eligible)
	// Одобренному пользователю рефералов не считаем вовсе.
	checker.AssertNotCalled(t, "GetReferrals", mock.Anything, mock.Anything)
}

func TestGate_UnapprovedGetsMovingThreshold(t *testing.T) {
	checker := new(mockChecker)
	gate := NewGate(checker)
	ctx := context.Background()

	checker.On("GetApprovalStatus", ctx, int64(2)).Return(false, nil)
	checker.On("GetReferrals", ctx, int64(2)).Return(refsOfLen(3), nil)

	res := gate.Check(ctx, 2)
	assert.False(t, res.Eligible)
	assert.Equal(t, 3, res.ReferralCount)
	assert.Equal(t, 8, res.RequiredCount)
}

func TestGate_ZeroReferrals(t *testing.T) {
	checker := new(mockChecker)
	gate := NewGate(checker)
	ctx := context.Background()

	checker.On("GetApprovalStatus", ctx, int64(3)).Return(false, nil)
	checker.On("GetReferrals", ctx, int64(3)).Return(refsOfLen(0), nil)

	res := gate.Check(ctx, 3)
	assert.False(t, res.Eligible)
	assert.Equal(t, 0, res.ReferralCount)
	assert.Equal(t, DefaultRequired, res.RequiredCount)
}

func TestGate_ApprovalErrorFailsClosed(t *testing.T) {
	checker := new(mockChecker)
	gate := NewGate(checker)
	ctx := context.Background()

	checker.On("GetApprovalStatus", ctx, int64(4)).Return(false, errors.New("connection refused"))

	res := gate.Check(ctx, 4)
	assert.Equal(t, Result{Eligible: false, ReferralCount: 0, RequiredCount: DefaultRequired}, res)
	checker.AssertNotCalled(t, "GetReferrals", mock.Anything, mock.Anything)
}

func TestGate_ReferralsErrorFailsClosed(t *testing.T) {
	checker := new(mockChecker)
	gate := NewGate(checker)
	ctx := context.Background()

	checker.On("GetApprovalStatus", ctx, int64(5)).Return(false, nil)
	checker.On("GetReferrals", ctx, int64(5)).Return(nil, errors.New("timeout"))

	res := gate.Check(ctx, 5)
	assert.Equal(t, Result{Eligible: false, ReferralCount: 0, RequiredCount: DefaultRequired}, res)
}
