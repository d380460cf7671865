package service

// Notifier отправляет сообщение пользователю через бота.
// Сервисы используют его только для побочных уведомлений: ошибка отправки
// логируется и никогда не отменяет уже совершённую операцию.
type Notifier interface {
	SendMessage(userID int64, text string) error
}
