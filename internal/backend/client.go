package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
)

// Client реализует типизированный доступ к удалённому API фаучета.
// Бэкенд владеет всем состоянием (балансы, рефералы, выводы); клиент —
// чистый I/O без бизнес-логики.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// HistoryEntry - запись в истории начислений пользователя.
type HistoryEntry struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Time   string `json:"time"`
}

// Referrals - ответ бэкенда по рефералам пользователя.
// Элементы referral_list бэкенд не специфицирует, нам важна только длина.
type Referrals struct {
	List   []json.RawMessage `json:"referral_list"`
	Jumlah int               `json:"jumlah"`
}

// Statistics - агрегированные счётчики для админского меню.
type Statistics struct {
	TotalUser       int64 `json:"total_user"`
	TotalPoin       int64 `json:"total_poin"`
	TotalTarik      int64 `json:"total_tarik"`
	PendingTarik    int64 `json:"pending_tarik"`
	TotalVerifikasi int64 `json:"total_verifikasi"`
}

// ApproveError несёт человекочитаемую причину отказа approve, чтобы
// админ видел её в чате, а не обобщённую ошибку.
type ApproveError struct {
	Detail string
}

func (e *ApproveError) Error() string {
	return "backend: approve не выполнен: " + e.Detail
}

// WithdrawalRequest - заявка на вывод, как её принимает бэкенд.
type WithdrawalRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
	Method string `json:"metode"`
	Number string `json:"nomor"`
}

// RegisterUser выполняет идемпотентный upsert пользователя при первом контакте.
func (c *Client) RegisterUser(ctx context.Context, userID int64, username string) error {
	return c.post(ctx, "/user/", map[string]any{
		"user_id":  strconv.FormatInt(userID, 10),
		"username": username,
	}, nil)
}

// RegisterReferral привязывает пригласившего к новому пользователю.
func (c *Client) RegisterReferral(ctx context.Context, userID int64, refID string) error {
	return c.post(ctx, "/referral", map[string]any{
		"user_id": strconv.FormatInt(userID, 10),
		"ref_id":  refID,
	}, nil)
}

// GetBalance возвращает текущий баланс пользователя в поинтах.
func (c *Client) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var out struct {
		Saldo int64 `json:"saldo"`
	}
	if err := c.get(ctx, "/user/saldo/"+strconv.FormatInt(userID, 10), &out); err != nil {
		return 0, err
	}
	return out.Saldo, nil
}

// GetHistory возвращает последние записи истории начислений.
func (c *Client) GetHistory(ctx context.Context, userID int64) ([]HistoryEntry, error) {
	var out struct {
		Riwayat []HistoryEntry `json:"riwayat"`
	}
	if err := c.get(ctx, "/user/riwayat/"+strconv.FormatInt(userID, 10), &out); err != nil {
		return nil, err
	}
	return out.Riwayat, nil
}

// SubmitVerification сохраняет произвольные верификационные данные пользователя.
func (c *Client) SubmitVerification(ctx context.Context, userID int64, input string) error {
	return c.post(ctx, "/user/verifikasi", map[string]any{
		"user_id": strconv.FormatInt(userID, 10),
		"input":   input,
	}, nil)
}

// GetApprovalStatus возвращает флаг ручного одобрения (быстрый путь гейта).
func (c *Client) GetApprovalStatus(ctx context.Context, userID int64) (bool, error) {
	var out struct {
		Approved bool `json:"approved"`
	}
	if err := c.get(ctx, "/approved/"+strconv.FormatInt(userID, 10), &out); err != nil {
		return false, err
	}
	return out.Approved, nil
}

// GetReferrals возвращает список рефералов пользователя.
func (c *Client) GetReferrals(ctx context.Context, userID int64) (*Referrals, error) {
	var out Referrals
	if err := c.get(ctx, "/referral/"+strconv.FormatInt(userID, 10), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitWithdrawal создаёт заявку на вывод.
func (c *Client) SubmitWithdrawal(ctx context.Context, req WithdrawalRequest) error {
	return c.post(ctx, "/tarik/ajukan_tarik", req, nil)
}

// ConfirmWithdrawal фиксирует решение администратора по заявке.
// status: "diterima" или "ditolak".
func (c *Client) ConfirmWithdrawal(ctx context.Context, userID int64, amount int64, status string) error {
	return c.post(ctx, "/tarik/konfirmasi_tarik", map[string]any{
		"user_id": strconv.FormatInt(userID, 10),
		"jumlah":  amount,
		"status":  status,
	}, nil)
}

// LookupUser проверяет существование пользователя. Не-200 трактуется как
// отсутствие (apperror.ErrUserNotFound); транспортная ошибка возвращается
// как есть, чтобы вызывающий мог отличить "нет такого" от "бэкенд недоступен".
func (c *Client) LookupUser(ctx context.Context, userID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperror.ErrUserNotFound
	}
	return nil
}

// SendPoints начисляет поинты пользователю (админское действие).
func (c *Client) SendPoints(ctx context.Context, userID int64, amount int64) error {
	return c.post(ctx, "/poin/kirim_poin", map[string]any{
		"user_id": userID,
		"amount":  amount,
	}, nil)
}

// GetStatistics возвращает счётчики для админского дашборда.
func (c *Client) GetStatistics(ctx context.Context) (*Statistics, error) {
	var out Statistics
	if err := c.get(ctx, "/user/statistik", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveUser вручную одобряет пользователя. При неуспехе возвращает detail
// из тела ответа, чтобы админ видел причину.
func (c *Client) ApproveUser(ctx context.Context, userID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/approve_user/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Detail == "" {
			errBody.Detail = "Tidak diketahui"
		}
		return &ApproveError{Detail: errBody.Detail}
	}
	return nil
}

// get выполняет GET запрос и декодирует ответ в out (если out != nil).
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend: код ответа %d на GET %s", resp.StatusCode, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: не удалось декодировать ответ GET %s: %w", path, err)
	}
	return nil
}

// post выполняет POST запрос с JSON телом и декодирует ответ в out (если out != nil).
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend: код ответа %d на POST %s", resp.StatusCode, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: не удалось декодировать ответ POST %s: %w", path, err)
	}
	return nil
}
