package bot

import (
	"fmt"

	"github.com/PaulSonOfLars/gotgbot/v2"

	"github.com/ignatzorin/fluxion-bot/internal/service"
)

// mainMenu собирает основную клавиатуру пользователя. Кнопка мини-аппа
// показывается только если URL задан в конфигурации.
func mainMenu(miniAppURL string) gotgbot.InlineKeyboardMarkup {
	rows := [][]gotgbot.InlineKeyboardButton{}
	if miniAppURL != "" {
		rows = append(rows, []gotgbot.InlineKeyboardButton{
			{Text: "🎬 Tonton Iklan & Klaim Poin", WebApp: &gotgbot.WebAppInfo{Url: miniAppURL}},
		})
	}
	rows = append(rows,
		[]gotgbot.InlineKeyboardButton{
			{Text: "💰 Saldo", CallbackData: "saldo"},
			{Text: "🕓 Riwayat", CallbackData: "riwayat"},
		},
		[]gotgbot.InlineKeyboardButton{
			{Text: "💸 Tarik Saldo", CallbackData: "tarik"},
			{Text: "✅ Verifikasi", CallbackData: "verifikasi"},
		},
		[]gotgbot.InlineKeyboardButton{
			{Text: "👥 Referral", CallbackData: "referral"},
		},
	)
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func methodKeyboard() gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
		{
			{Text: "DANA", CallbackData: "metode_DANA"},
			{Text: "OVO", CallbackData: "metode_OVO"},
			{Text: "GoPay", CallbackData: "metode_GOPAY"},
		},
	}}
}

func adminMenu() gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
		{{Text: "🎁 Kirim Poin", CallbackData: "kirim_poin"}},
		{{Text: "🔄 Refresh Statistik", CallbackData: "admin_menu"}},
		{{Text: "🏠 Menu Utama", CallbackData: "back_home"}},
	}}
}

func backHomeKeyboard() gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
		{{Text: "🏠 Kembali ke Menu", CallbackData: "back_home"}},
	}}
}

// confirmKeyboard - клавиатура двойного контроля для администратора.
// Каждая кнопка несёт полный кортеж решения, состояние на боте не хранится.
func confirmKeyboard(userID, amount int64) gotgbot.InlineKeyboardMarkup {
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: [][]gotgbot.InlineKeyboardButton{
		{
			{Text: "✅ Terima", CallbackData: encodeConfirm(userID, amount, service.DecisionAccept)},
			{Text: "❌ Tolak", CallbackData: encodeConfirm(userID, amount, service.DecisionReject)},
		},
	}}
}

func referralLink(botUsername string, userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", botUsername, userID)
}
