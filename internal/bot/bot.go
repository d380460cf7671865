package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"

	"github.com/ignatzorin/fluxion-bot/internal/logger"
)

// Bot связывает gotgbot-транспорт с обработчиками и управляет поллингом.
type Bot struct {
	tg         *gotgbot.Bot
	dispatcher *ext.Dispatcher
	updater    *ext.Updater
}

// New создаёт клиента Telegram и диспетчер. Обработчики регистрируются
// отдельно через Attach: им нужен Sender, которому нужен клиент.
func New(token string) (*Bot, error) {
	tg, err := gotgbot.NewBot(token, nil)
	if err != nil {
		return nil, fmt.Errorf("bot: не удалось создать клиента Telegram: %w", err)
	}

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			logger.WithComponent("dispatcher").WithError(err).Error("обработчик вернул ошибку")
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})

	return &Bot{
		tg:         tg,
		dispatcher: dispatcher,
		updater:    ext.NewUpdater(dispatcher, nil),
	}, nil
}

// Attach регистрирует все обработчики бота в диспетчере.
func (b *Bot) Attach(h *Handler) {
	b.dispatcher.AddHandler(handlers.NewCommand("start", h.Start))
	b.dispatcher.AddHandler(handlers.NewCommand("admin_menu", h.AdminMenu))
	b.dispatcher.AddHandler(handlers.NewCommand("approve", h.Approve))

	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal("saldo"), h.Saldo))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal("riwayat"), h.Riwayat))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal("tarik"), h.Tarik))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal("verifikasi"), h.Verifikasi))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal("referral"), h.Referral))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix("metode_"), h.Metode))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(confirmPrefix), h.Konfirmasi))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal("admin_menu"), h.AdminMenuRefresh))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal("kirim_poin"), h.KirimPoin))
	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal("back_home"), h.BackHome))

	// Свободный текст без команд уходит в маршрутизатор шагов диалога.
	b.dispatcher.AddHandler(handlers.NewMessage(func(msg *gotgbot.Message) bool {
		return msg.Text != "" && !strings.HasPrefix(msg.Text, "/")
	}, h.OnText))
}

// Telegram отдаёт низкоуровневый клиент (для Sender и рассылок).
func (b *Bot) Telegram() *gotgbot.Bot {
	return b.tg
}

// StartPolling запускает long polling и блокируется до остановки.
func (b *Bot) StartPolling() error {
	err := b.updater.StartPolling(b.tg, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: 10 * time.Second,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("bot: не удалось запустить polling: %w", err)
	}
	logger.WithComponent("bot").Infof("бот @%s начал поллинг", b.tg.Username)
	b.updater.Idle()
	return nil
}

// Stop останавливает поллинг и диспетчер.
func (b *Bot) Stop() error {
	return b.updater.Stop()
}
