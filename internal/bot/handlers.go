package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/fluxion-bot/internal/backend"
	"github.com/ignatzorin/fluxion-bot/internal/goroutine"
	"github.com/ignatzorin/fluxion-bot/internal/logger"
	"github.com/ignatzorin/fluxion-bot/internal/pkg/apperror"
	"github.com/ignatzorin/fluxion-bot/internal/repository"
	"github.com/ignatzorin/fluxion-bot/internal/service"
	"github.com/ignatzorin/fluxion-bot/internal/session"
)

// Handler объединяет все Telegram-обработчики бота. Сам Handler не
// содержит бизнес-логики: парсит апдейты, вызывает сервисы и рендерит
// ответы. Вся логика диалогов живёт в internal/service.
type Handler struct {
	adminID     int64
	miniAppURL  string
	backend     *backend.Client
	withdraw    *service.WithdrawService
	confirm     *service.ConfirmationService
	grant       *service.GrantService
	verify      *service.VerificationService
	sessions    *session.Store
	subscribers *repository.SubscriberRepository
	log         *logrus.Entry
}

func NewHandler(
	adminID int64,
	miniAppURL string,
	bc *backend.Client,
	withdraw *service.WithdrawService,
	confirm *service.ConfirmationService,
	grant *service.GrantService,
	verify *service.VerificationService,
	sessions *session.Store,
	subscribers *repository.SubscriberRepository,
) *Handler {
	return &Handler{
		adminID:     adminID,
		miniAppURL:  miniAppURL,
		backend:     bc,
		withdraw:    withdraw,
		confirm:     confirm,
		grant:       grant,
		verify:      verify,
		sessions:    sessions,
		subscribers: subscribers,
		log:         logger.WithComponent("bot"),
	}
}

// Start регистрирует пользователя на бэкенде, привязывает реферала из
// deep-link аргумента и показывает главное меню.
func (h *Handler) Start(b *gotgbot.Bot, ctx *ext.Context) error {
	user := ctx.EffectiveUser
	msg := ctx.EffectiveMessage

	if err := h.backend.RegisterUser(context.Background(), user.Id, user.Username); err != nil {
		h.log.WithError(err).Warn("не удалось зарегистрировать пользователя")
		_, err = msg.Reply(b, textRegisterFailed, nil)
		return err
	}

	// Реферал из /start <ref_id>; самоприглашение игнорируем.
	if args := ctx.Args(); len(args) > 1 {
		refID := args[1]
		if refID != strconv.FormatInt(user.Id, 10) {
			if err := h.backend.RegisterReferral(context.Background(), user.Id, refID); err != nil {
				h.log.WithError(err).Warn("не удалось привязать реферала")
			}
		}
	}

	if h.subscribers != nil {
		uid, uname := user.Id, user.Username
		goroutine.SafeGo(func() {
			if err := h.subscribers.Upsert(context.Background(), uid, uname); err != nil {
				h.log.WithError(err).Warn("не удалось сохранить подписчика рассылки")
			}
		})
	}

	_, err := msg.Reply(b, textWelcome, &gotgbot.SendMessageOpts{
		ParseMode:   "Markdown",
		ReplyMarkup: mainMenu(h.miniAppURL),
	})
	return err
}

// Saldo показывает текущий баланс пользователя.
func (h *Handler) Saldo(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery
	_, _ = query.Answer(b, nil)

	saldo, err := h.backend.GetBalance(context.Background(), ctx.EffectiveUser.Id)
	if err != nil {
		h.log.WithError(err).Warn("не удалось получить баланс")
		return h.editText(b, msg, textGenericFailed, gotgbot.InlineKeyboardMarkup{})
	}
	return h.editText(b, msg, fmt.Sprintf("💰 Saldo kamu: *Rp%d*", saldo), backHomeKeyboard())
}

// Riwayat показывает последние десять операций из истории.
func (h *Handler) Riwayat(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery
	_, _ = query.Answer(b, nil)

	entries, err := h.backend.GetHistory(context.Background(), ctx.EffectiveUser.Id)
	if err != nil {
		h.log.WithError(err).Warn("не удалось получить историю")
		return h.editText(b, msg, textGenericFailed, gotgbot.InlineKeyboardMarkup{})
	}
	if len(entries) == 0 {
		return h.editText(b, msg, textHistoryEmpty, backHomeKeyboard())
	}

	if len(entries) > 10 {
		entries = entries[len(entries)-10:]
	}
	var sb strings.Builder
	sb.WriteString(textHistoryHeader)
	for _, e := range entries {
		// Бэкенд отдаёт ISO-время; в чате достаточно даты.
		date, _, _ := strings.Cut(e.Time, "T")
		sb.WriteString(fmt.Sprintf("• %s: Rp%d (%s)\n", e.Type, e.Amount, date))
	}
	return h.editText(b, msg, sb.String(), backHomeKeyboard())
}

// Referral показывает реферальную ссылку и число приглашённых.
func (h *Handler) Referral(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery
	_, _ = query.Answer(b, nil)

	userID := ctx.EffectiveUser.Id
	resp, err := h.backend.GetReferrals(context.Background(), userID)
	if err != nil {
		h.log.WithError(err).Warn("не удалось получить рефералов")
		return h.editText(b, msg, textGenericFailed, gotgbot.InlineKeyboardMarkup{})
	}
	text := fmt.Sprintf("🔗 Link referral kamu:\n%s\n\n👥 Jumlah referral: *%d*",
		referralLink(b.Username, userID), resp.Jumlah)
	return h.editText(b, msg, text, backHomeKeyboard())
}

// Verifikasi открывает диалог верификации.
func (h *Handler) Verifikasi(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery
	_, _ = query.Answer(b, nil)

	h.verify.Start(ctx.EffectiveUser.Id)
	return h.editText(b, msg, textVerifyPrompt, gotgbot.InlineKeyboardMarkup{})
}

// Tarik запускает диалог вывода средств, предварительно прогнав
// пользователя через реферальный гейт.
func (h *Handler) Tarik(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery
	_, _ = query.Answer(b, nil)

	res := h.withdraw.Start(context.Background(), ctx.EffectiveUser.Id)
	if !res.Eligible {
		return h.editText(b, msg, textIneligible(res.ReferralCount, res.RequiredCount), gotgbot.InlineKeyboardMarkup{})
	}
	return h.editText(b, msg, textChooseMethod, methodKeyboard())
}

// Metode обрабатывает выбор платёжного метода (callback metode_*).
func (h *Handler) Metode(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery

	method := strings.TrimPrefix(query.Data, "metode_")
	if err := h.withdraw.ChooseMethod(ctx.EffectiveUser.Id, method); err != nil {
		_, err = query.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      textConfirmFailed,
			ShowAlert: true,
		})
		return err
	}
	_, _ = query.Answer(b, nil)
	return h.editText(b, msg, fmt.Sprintf("Masukkan nomor %s kamu:", method), gotgbot.InlineKeyboardMarkup{})
}

// Konfirmasi - решение администратора по заявке на вывод. Весь кортеж
// решения закодирован в callback-данных кнопки.
func (h *Handler) Konfirmasi(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery

	if ctx.EffectiveUser.Id != h.adminID {
		_, err := query.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      textAccessDenied,
			ShowAlert: true,
		})
		return err
	}

	userID, amount, decision, err := decodeConfirm(query.Data)
	if err != nil {
		h.log.WithError(err).Warn("не удалось разобрать callback подтверждения")
		_, err = query.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      textConfirmFailed,
			ShowAlert: true,
		})
		return err
	}

	if err := h.confirm.Resolve(context.Background(), userID, amount, decision); err != nil {
		h.log.WithError(err).Error("бэкенд отклонил подтверждение вывода")
		_, err = query.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      textConfirmFailed,
			ShowAlert: true,
		})
		return err
	}

	_, _ = query.Answer(b, nil)
	mark := "✅"
	if decision == service.DecisionReject {
		mark = "❌"
	}
	return h.editText(b, msg, fmt.Sprintf("%s Penarikan Rp%d dari %d telah dikonfirmasi.", mark, amount, userID), gotgbot.InlineKeyboardMarkup{})
}

// AdminMenu показывает статистику платформы (команда /admin_menu).
func (h *Handler) AdminMenu(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	if ctx.EffectiveUser.Id != h.adminID {
		_, err := msg.Reply(b, textAccessDenied, nil)
		return err
	}

	text, err := h.statsText()
	if err != nil {
		_, err = msg.Reply(b, textStatsFailed, nil)
		return err
	}
	_, err = msg.Reply(b, text, &gotgbot.SendMessageOpts{
		ParseMode:   "Markdown",
		ReplyMarkup: adminMenu(),
	})
	return err
}

// AdminMenuRefresh - то же меню по callback-кнопке, с перечитыванием статистики.
func (h *Handler) AdminMenuRefresh(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery

	if ctx.EffectiveUser.Id != h.adminID {
		_, err := query.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      textAccessDenied,
			ShowAlert: true,
		})
		return err
	}
	_, _ = query.Answer(b, nil)

	text, err := h.statsText()
	if err != nil {
		return h.editText(b, msg, textStatsFailed, gotgbot.InlineKeyboardMarkup{})
	}
	return h.editText(b, msg, text, adminMenu())
}

// KirimPoin открывает админский диалог начисления поинтов.
func (h *Handler) KirimPoin(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery

	if ctx.EffectiveUser.Id != h.adminID {
		_, err := query.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      textAccessDenied,
			ShowAlert: true,
		})
		return err
	}
	_, _ = query.Answer(b, nil)

	h.grant.Start(ctx.EffectiveUser.Id)
	return h.editText(b, msg, textGrantUserIDPrompt, gotgbot.InlineKeyboardMarkup{})
}

// BackHome возвращает пользователя в главное меню.
func (h *Handler) BackHome(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	query := ctx.CallbackQuery
	_, _ = query.Answer(b, nil)

	h.sessions.Clear(ctx.EffectiveUser.Id)
	return h.editText(b, msg, textWelcome, mainMenu(h.miniAppURL))
}

// Approve - ручное одобрение пользователя, обходящее реферальный гейт.
func (h *Handler) Approve(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	if ctx.EffectiveUser.Id != h.adminID {
		_, err := msg.Reply(b, textNotAdmin, nil)
		return err
	}

	args := ctx.Args()
	if len(args) != 2 {
		_, err := msg.Reply(b, textApproveUsage, nil)
		return err
	}
	userID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		_, err = msg.Reply(b, textApproveIDNotNumber, nil)
		return err
	}

	if err := h.backend.ApproveUser(context.Background(), userID); err != nil {
		var ae *backend.ApproveError
		if errors.As(err, &ae) {
			_, err = msg.Reply(b, "❌ Gagal: "+ae.Detail, nil)
			return err
		}
		h.log.WithError(err).Warn("approve не прошёл")
		_, err = msg.Reply(b, textGrantServerFailed, nil)
		return err
	}
	_, err = msg.Reply(b, fmt.Sprintf("✅ User %d berhasil di-approve.", userID), nil)
	return err
}

// OnText маршрутизирует свободный текст по текущему шагу диалога.
// Сообщения вне диалога игнорируются.
func (h *Handler) OnText(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	userID := ctx.EffectiveUser.Id
	text := strings.TrimSpace(msg.Text)

	switch h.sessions.Get(userID).Step {
	case session.StepWithdrawNumber:
		if err := h.withdraw.EnterNumber(userID, text); err != nil {
			return nil
		}
		_, err := msg.Reply(b, textAmountPrompt, nil)
		return err

	case session.StepWithdrawAmount:
		return h.onWithdrawAmount(b, ctx, text)

	case session.StepVerifyInput:
		if err := h.verify.Submit(context.Background(), userID, text); err != nil {
			h.log.WithError(err).Warn("не удалось сохранить верификацию")
			_, err = msg.Reply(b, textGenericFailed, nil)
			return err
		}
		_, err := msg.Reply(b, textVerifySaved, nil)
		return err

	case session.StepGrantUserID:
		return h.onGrantTarget(b, ctx, text)

	case session.StepGrantAmount:
		return h.onGrantAmount(b, ctx, text)
	}
	return nil
}

func (h *Handler) onWithdrawAmount(b *gotgbot.Bot, ctx *ext.Context, text string) error {
	msg := ctx.EffectiveMessage
	userID := ctx.EffectiveUser.Id

	pending, err := h.withdraw.EnterAmount(context.Background(), userID, text)
	if err != nil {
		reply := textGenericFailed
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			reply = textAmountNotNumber
		case errors.Is(err, service.ErrMinWithdrawalAmount):
			reply = textAmountBelowMin
		case errors.Is(err, service.ErrInsufficientBalance):
			reply = textBalanceTooLow
		default:
			h.log.WithError(err).Error("вывод средств не прошёл")
		}
		_, err = msg.Reply(b, reply, nil)
		return err
	}

	// Уведомляем админа; сбой уведомления не должен откатывать заявку,
	// которую бэкенд уже принял.
	adminText := fmt.Sprintf("🧾 Penarikan baru:\nUser: %d\nMetode: %s\nNomor: %s\nJumlah: Rp%d",
		pending.UserID, pending.Method, pending.Number, pending.Amount)
	kb := confirmKeyboard(pending.UserID, pending.Amount)
	if _, err := b.SendMessage(h.adminID, adminText, &gotgbot.SendMessageOpts{ReplyMarkup: kb}); err != nil {
		h.log.WithError(err).Error("не удалось уведомить админа о заявке на вывод")
	}

	_, err = msg.Reply(b, textWithdrawSubmitted, nil)
	return err
}

func (h *Handler) onGrantTarget(b *gotgbot.Bot, ctx *ext.Context, text string) error {
	msg := ctx.EffectiveMessage
	if ctx.EffectiveUser.Id != h.adminID {
		return nil
	}

	if err := h.grant.EnterTarget(context.Background(), ctx.EffectiveUser.Id, text); err != nil {
		reply := textGrantServerFailed
		switch {
		case errors.Is(err, service.ErrInvalidUserID):
			reply = textGrantUserIDInvalid
		case apperror.IsNotFound(err):
			reply = textGrantUserNotFound
		default:
			h.log.WithError(err).Warn("не удалось проверить получателя поинтов")
		}
		_, err = msg.Reply(b, reply, &gotgbot.SendMessageOpts{ReplyMarkup: backHomeKeyboard()})
		return err
	}
	_, err := msg.Reply(b, textAmountPrompt, nil)
	return err
}

func (h *Handler) onGrantAmount(b *gotgbot.Bot, ctx *ext.Context, text string) error {
	msg := ctx.EffectiveMessage
	if ctx.EffectiveUser.Id != h.adminID {
		return nil
	}

	target, amount, err := h.grant.EnterAmount(context.Background(), ctx.EffectiveUser.Id, text)
	if err != nil {
		reply := textGrantServerFailed
		if errors.Is(err, service.ErrInvalidAmount) {
			reply = textGrantAmountInvalid
		} else {
			h.log.WithError(err).Warn("не удалось начислить поинты")
		}
		_, err = msg.Reply(b, reply, nil)
		return err
	}
	_, err = msg.Reply(b, fmt.Sprintf("%s (+%d poin untuk %d)", textGrantSent, amount, target), nil)
	return err
}

func (h *Handler) statsText() (string, error) {
	stats, err := h.backend.GetStatistics(context.Background())
	if err != nil {
		h.log.WithError(err).Warn("не удалось получить статистику")
		return "", err
	}
	return fmt.Sprintf("📊 *Statistik Platform*\n\n"+
		"👤 Total user: %d\n"+
		"💎 Total poin: %d\n"+
		"💸 Total penarikan: %d\n"+
		"⏳ Penarikan pending: %d\n"+
		"✅ Total verifikasi: %d",
		stats.TotalUser, stats.TotalPoin, stats.TotalTarik, stats.PendingTarik, stats.TotalVerifikasi), nil
}

// editText правит исходное сообщение меню; если Telegram не даёт его
// редактировать (например, сообщение слишком старое), шлём новое.
func (h *Handler) editText(b *gotgbot.Bot, msg *gotgbot.Message, text string, kb gotgbot.InlineKeyboardMarkup) error {
	_, _, err := msg.EditText(b, text, &gotgbot.EditMessageTextOpts{
		ParseMode:   "Markdown",
		ReplyMarkup: kb,
	})
	if err != nil {
		_, err = b.SendMessage(msg.Chat.Id, text, &gotgbot.SendMessageOpts{
			ParseMode:   "Markdown",
			ReplyMarkup: kb,
		})
	}
	return err
}
