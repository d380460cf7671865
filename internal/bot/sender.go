package bot

import (
	"github.com/PaulSonOfLars/gotgbot/v2"
)

// Sender отправляет сообщения пользователям от имени бота. Используется
// сервисами (подтверждение выплат, начисление поинтов, рассылка) и
// HTTP-эндпоинтом уведомлений, которым сам бот не нужен.
type Sender struct {
	bot *gotgbot.Bot
}

func NewSender(bot *gotgbot.Bot) *Sender {
	return &Sender{bot: bot}
}

func (s *Sender) SendMessage(userID int64, text string) error {
	_, err := s.bot.SendMessage(userID, text, &gotgbot.SendMessageOpts{
		ParseMode: "Markdown",
	})
	return err
}
