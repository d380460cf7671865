package eligibility

import (
	"context"

	"github.com/ignatzorin/fluxion-bot/internal/backend"
)

// DefaultRequired - порог для пользователя без единого реферала.
const DefaultRequired = 5

// Checker - часть backend.Client, нужная гейту.
type Checker interface {
	GetApprovalStatus(ctx context.Context, userID int64) (bool, error)
	GetReferrals(ctx context.Context, userID int64) (*backend.Referrals, error)
}

// Result - исход проверки права на вывод. Для неодобренных пользователей
// RequiredCount и ReferralCount идут в текст сообщения.
type Result struct {
	Eligible      bool
	ReferralCount int
	RequiredCount int
}

// Gate решает, может ли пользователь войти в диалог вывода средств.
type Gate struct {
	backend Checker
}

// NewGate создаёт гейт поверх клиента бэкенда.
func NewGate(b Checker) *Gate {
	return &Gate{backend: b}
}

// Check вычисляет право на вывод. Никогда не возвращает ошибку: гейт
// защищает финансовую операцию, поэтому любой сбой связи с бэкендом
// трактуется как "не одобрен, ноль рефералов, порог 5" (fail-closed).
//
// Ручное одобрение даёт право безусловно, сколько бы рефералов ни было.
// Иначе порог считается как "текущее количество + 5" - воспроизводим
// формулу бэкенда буквально; обходной путь для пользователя -
// административный /approve.
//
// Результат вычисляется заново при каждой попытке вывода, не кэшируется.
func (g *Gate) Check(ctx context.Context, userID int64) Result {
	approved, err := g.backend.GetApprovalStatus(ctx, userID)
	if err == nil && approved {
		return Result{Eligible: true}
	}
	if err != nil {
		return Result{Eligible: false, ReferralCount: 0, RequiredCount: DefaultRequired}
	}

	refs, err := g.backend.GetReferrals(ctx, userID)
	if err != nil {
		return Result{Eligible: false, ReferralCount: 0, RequiredCount: DefaultRequired}
	}

	count := len(refs.List)
	return Result{
		Eligible:      false,
		ReferralCount: count,
		RequiredCount: count + DefaultRequired,
	}
}
