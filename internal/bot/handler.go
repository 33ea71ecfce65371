package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pitchbot/internal/models"
)

const (
	buttonNewPitch = "🚀 Релиз на питчинг"
	buttonMyPitch  = "📮 Релизы на питчинг"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID
	userID := message.From.ID
	text := strings.TrimSpace(message.Text)

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.sendMessage(chatID, "Привет! Это бот лейбла: здесь можно отправить релиз на питчинг и посмотреть свои заявки.")
			b.showMainMenu(chatID, userID)
		case "pitching":
			b.showMainMenu(chatID, userID)
		default:
			b.sendMessage(chatID, "Неизвестная команда. Попробуйте /pitching.")
		}
		return
	}

	switch text {
	case buttonNewPitch:
		b.startWizard(ctx, chatID, userID)
		return
	case buttonMyPitch:
		b.renderUserList(ctx, chatID, userID, 0, 0)
		return
	}

	// Текст внутри мастера заявки
	state, err := b.stateService.GetState(ctx, userID)
	if err == nil && state != nil && state.CurrentStep != "" {
		b.handleWizardMessage(ctx, update, state)
		return
	}

	b.showMainMenu(chatID, userID)
}

func (b *Bot) mainMenuKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonNewPitch, models.CallbackPitchNew),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonMyPitch, models.CallbackListPrefix+"0"),
		),
	}
	if b.isAdmin(userID) {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗂 Все заявки", models.CallbackAdminListPrefix+"0"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📤 Экспорт в Excel", models.CallbackAdminExport),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) showMainMenu(chatID, userID int64) {
	if err := b.tgService.SendWithInlineKeyboard(chatID, "Что делаем?", b.mainMenuKeyboard(userID)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send main menu")
	}
}
