package bot

import (
	"errors"

	"pitchbot/internal/database"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrNotFound) {
		return "⚠️ Заявка не найдена. Возможно, она уже удалена."
	}

	if errors.Is(err, database.ErrForbidden) {
		return "⚠️ У вас нет доступа к этой заявке."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."
}
