package session

import "sync"

// Step - текущий шаг диалога пользователя. Пустое значение означает,
// что активного диалога нет.
type Step string

const (
	StepNone           Step = ""
	StepWithdrawMethod Step = "withdraw:waiting_method"
	StepWithdrawNumber Step = "withdraw:waiting_number"
	StepWithdrawAmount Step = "withdraw:waiting_amount"
	StepVerifyInput    Step = "verify:waiting_input"
	StepGrantUserID    Step = "grant:waiting_userid"
	StepGrantAmount    Step = "grant:waiting_amount"
)

// State - транзитное состояние диалога одного пользователя: активный шаг
// плюс поля, накопленные предыдущими шагами этого диалога.
type State struct {
	Step         Step
	Method       string
	Number       string
	TargetUserID int64
}

// Store хранит состояния диалогов по идентификатору пользователя.
// У пользователя не бывает больше одного активного диалога: вход в новый
// диалог перезаписывает незавершённый предыдущий (сброс при повторном
// входе - осознанная политика, не ошибка). Между пользователями общего
// изменяемого состояния нет, изоляция достигается ключеванием по id.
type Store struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{states: make(map[int64]State)}
}

// Get возвращает состояние пользователя. Для неизвестного пользователя -
// нулевое состояние (StepNone).
func (s *Store) Get(userID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[userID]
}

// Begin начинает новый диалог с указанного шага, отбрасывая любое прежнее
// состояние пользователя.
func (s *Store) Begin(userID int64, step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = State{Step: step}
}

// Set сохраняет состояние пользователя целиком (продвижение по шагам).
func (s *Store) Set(userID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = st
}

// Clear завершает диалог пользователя (завершение, отмена или фатальная
// ошибка валидации).
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
