package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ignatzorin/fluxion-bot/internal/service"
)

// confirmPrefix - префикс callback-данных контролов решения администратора.
const confirmPrefix = "konfirmasi:"

// encodeConfirm собирает callback-данные контрола решения. Кортеж
// (userID, amount, decision) неизменяемо зашивается в контрол при создании:
// на каждое возможное решение свой токен, серверный поиск заявки при
// активации не нужен. Подделка не защищается подписью - callback-данные
// возвращаются только боту, который их выдал, а админ единственный
// доверенный получатель; кодек намеренно изолирован здесь, чтобы при
// необходимости заменить его на серверный opaque-токен одной правкой.
func encodeConfirm(userID, amount int64, decision service.Decision) string {
	return fmt.Sprintf("%s%d:%d:%s", confirmPrefix, userID, amount, decision)
}

// decodeConfirm разбирает callback-данные контрола решения.
func decodeConfirm(data string) (userID int64, amount int64, decision service.Decision, err error) {
	raw, ok := strings.CutPrefix(data, confirmPrefix)
	if !ok {
		return 0, 0, "", fmt.Errorf("bot: неожиданные callback-данные %q", data)
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, 0, "", fmt.Errorf("bot: неожиданные callback-данные %q", data)
	}

	userID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, "", fmt.Errorf("bot: невалидный user id в callback-данных %q", data)
	}
	amount, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, "", fmt.Errorf("bot: невалидная сумма в callback-данных %q", data)
	}

	decision = service.Decision(parts[2])
	if !decision.Valid() {
		return 0, 0, "", fmt.Errorf("bot: неизвестное решение в callback-данных %q", data)
	}
	return userID, amount, decision, nil
}
