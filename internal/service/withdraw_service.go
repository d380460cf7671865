package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ignatzorin/fluxion-bot/internal/backend"
	"github.com/ignatzorin/fluxion-bot/internal/eligibility"
	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
	"github.com/ignatzorin/fluxion-bot/internal/session"
)

// MinWithdrawalAmount - минимальная сумма вывода в поинтах (Rp100.000).
const MinWithdrawalAmount = 100_000

var (
	// ErrNoActiveFlow - шаг вызван вне активного диалога вывода.
	ErrNoActiveFlow = errors.New("у пользователя нет активного диалога вывода")
	// ErrUnknownMethod - метод не из списка DANA/OVO/GOPAY; состояние не меняется.
	ErrUnknownMethod = errors.New("неизвестный метод вывода")
	// ErrEmptyNumber - пустой номер кошелька; состояние не меняется.
	ErrEmptyNumber = errors.New("номер кошелька не может быть пустым")
	// ErrInvalidAmount - сумма не парсится как положительное число; состояние не меняется.
	ErrInvalidAmount = errors.New("сумма должна быть положительным числом")
	// ErrMinWithdrawalAmount - сумма ниже минимума; диалог прерывается.
	ErrMinWithdrawalAmount = errors.New("минимальная сумма вывода 100000")
	// ErrInsufficientBalance - на балансе меньше запрошенной суммы; диалог прерывается.
	ErrInsufficientBalance = errors.New("недостаточно средств на балансе")
)

// Methods - допустимые методы вывода.
var Methods = []string{"DANA", "OVO", "GOPAY"}

// WithdrawBackend - часть клиента бэкенда, нужная диалогу вывода.
type WithdrawBackend interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	SubmitWithdrawal(ctx context.Context, req backend.WithdrawalRequest) error
}

// EligibilityGate - гейт, решающий вход в диалог вывода.
type EligibilityGate interface {
	Check(ctx context.Context, userID int64) eligibility.Result
}

// PendingWithdrawal - успешно отправленная заявка; из неё строится
// подтверждение для администратора. Бот хранит только пару (userID, amount),
// нужную для контролов решения; записью о заявке владеет бэкенд.
type PendingWithdrawal struct {
	UserID int64
	Amount int64
	Method string
	Number string
}

// WithdrawService ведёт многошаговый диалог вывода средств:
// idle → waiting_method → waiting_number → waiting_amount → idle.
type WithdrawService struct {
	backend  WithdrawBackend
	gate     EligibilityGate
	sessions *session.Store
}

// NewWithdrawService создаёт сервис вывода.
func NewWithdrawService(b WithdrawBackend, gate EligibilityGate, sessions *session.Store) *WithdrawService {
	return &WithdrawService{backend: b, gate: gate, sessions: sessions}
}

// Start обрабатывает намерение вывода. Гейт опрашивается один раз, на входе:
// при отказе пользователь получает счётчики для сообщения, а состояние
// остаётся idle - шаг выбора метода не открывается вовсе. Повторный Start
// перезаписывает любой незавершённый диалог.
func (s *WithdrawService) Start(ctx context.Context, userID int64) eligibility.Result {
	res := s.gate.Check(ctx, userID)
	if res.Eligible {
		s.sessions.Begin(userID, session.StepWithdrawMethod)
	} else {
		s.sessions.Clear(userID)
	}
	return res
}

// ChooseMethod принимает метод вывода. Неизвестный токен отклоняется без
// смены состояния - пользователь остаётся на том же шаге.
func (s *WithdrawService) ChooseMethod(userID int64, method string) error {
	st := s.sessions.Get(userID)
	if st.Step != session.StepWithdrawMethod {
		return ErrNoActiveFlow
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if !isKnownMethod(method) {
		return ErrUnknownMethod
	}

	st.Method = method
	st.Step = session.StepWithdrawNumber
	s.sessions.Set(userID, st)
	return nil
}

// EnterNumber принимает номер кошелька. Формат не валидируется - любой
// непустой текст проходит (задокументированное ограничение исходной системы).
func (s *WithdrawService) EnterNumber(userID int64, number string) error {
	st := s.sessions.Get(userID)
	if st.Step != session.StepWithdrawNumber {
		return ErrNoActiveFlow
	}

	if strings.TrimSpace(number) == "" {
		return ErrEmptyNumber
	}

	st.Number = number
	st.Step = session.StepWithdrawAmount
	s.sessions.Set(userID, st)
	return nil
}

// EnterAmount завершает диалог. Порядок проверок фиксирован: сначала
// минимальная сумма (без похода за балансом), затем свежий баланс -
// балансу из ранних шагов не доверяем. Непарсящийся ввод оставляет
// пользователя на этом же шаге; любой другой исход очищает состояние,
// чтобы пользователь не застревал посреди диалога.
//
// При успехе заявка уже у бэкенда; вызывающий обязан открыть подтверждение
// администратору. При ошибке отправки подтверждение не создаётся.
func (s *WithdrawService) EnterAmount(ctx context.Context, userID int64, text string) (*PendingWithdrawal, error) {
	st := s.sessions.Get(userID)
	if st.Step != session.StepWithdrawAmount {
		return nil, ErrNoActiveFlow
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if amount < MinWithdrawalAmount {
		s.sessions.Clear(userID)
		return nil, ErrMinWithdrawalAmount
	}

	balance, err := s.backend.GetBalance(ctx, userID)
	if err != nil {
		s.sessions.Clear(userID)
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "не удалось получить баланс")
	}
	if balance < amount {
		s.sessions.Clear(userID)
		return nil, ErrInsufficientBalance
	}

	err = s.backend.SubmitWithdrawal(ctx, backend.WithdrawalRequest{
		UserID: strconv.FormatInt(userID, 10),
		Amount: amount,
		Method: st.Method,
		Number: st.Number,
	})
	s.sessions.Clear(userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "не удалось отправить заявку на вывод")
	}

	return &PendingWithdrawal{
		UserID: userID,
		Amount: amount,
		Method: st.Method,
		Number: st.Number,
	}, nil
}

func isKnownMethod(method string) bool {
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}
