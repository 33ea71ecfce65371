package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pitchbot/internal/models"
)

type PaginationParams struct {
	Ctx          context.Context
	ChatID       int64
	MessageID    int // 0 if new message
	Page         int
	Title        string
	PagePrefix   string
	BackCallback string
}

// renderPaginatedList - универсальная функция для отрисовки пагинированного
// списка; renderer получает уже зажатые limit/offset.
func (b *Bot) renderPaginatedList(
	params PaginationParams,
	totalCount, itemsPerPage int,
	renderer func(limit, offset int) (string, [][]tgbotapi.InlineKeyboardButton, error),
) {
	if itemsPerPage <= 0 {
		itemsPerPage = models.DefaultPageSize
	}

	totalPages := (totalCount + itemsPerPage - 1) / itemsPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if params.Page >= totalPages {
		params.Page = totalPages - 1
	}
	if params.Page < 0 {
		params.Page = 0
	}

	offset := params.Page * itemsPerPage
	content, keyboard, err := renderer(itemsPerPage, offset)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error rendering paginated list")
		b.sendMessage(params.ChatID, b.getErrorMessage(err))
		return
	}

	var message strings.Builder
	message.WriteString(fmt.Sprintf("%s\n\n", params.Title))
	if totalPages > 1 {
		message.WriteString(fmt.Sprintf("Страница %d из %d\n\n", params.Page+1, totalPages))
	}
	message.WriteString(content)

	// Навигационные кнопки
	var navButtons []tgbotapi.InlineKeyboardButton
	if params.Page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", fmt.Sprintf("%s%d", params.PagePrefix, params.Page-1)))
	}
	if offset+itemsPerPage < totalCount {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Вперед ➡️", fmt.Sprintf("%s%d", params.PagePrefix, params.Page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if params.BackCallback != "" {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад в меню", params.BackCallback),
		})
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	if params.MessageID != 0 {
		if err := b.tgService.EditMessage(params.ChatID, params.MessageID, message.String(), &markup); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to edit paginated list")
		}
		return
	}
	if err := b.tgService.SendHTMLWithInlineKeyboard(params.ChatID, message.String(), markup); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send paginated list")
	}
}

// renderUserList - список заявок пользователя
func (b *Bot) renderUserList(ctx context.Context, chatID, userID int64, messageID, page int) {
	total, err := b.pitchService.CountUser(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error counting pitch requests")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	params := PaginationParams{
		Ctx:          ctx,
		ChatID:       chatID,
		MessageID:    messageID,
		Page:         page,
		Title:        "📮 <b>Мои заявки на питчинг</b>",
		PagePrefix:   models.CallbackListPrefix,
		BackCallback: models.CallbackPitchMenu,
	}

	b.renderPaginatedList(params, total, b.config.Pitching.PageSize, func(limit, offset int) (string, [][]tgbotapi.InlineKeyboardButton, error) {
		requests, err := b.pitchService.ListUser(ctx, userID, limit, offset)
		if err != nil {
			return "", nil, err
		}
		if len(requests) == 0 {
			return "Пока нет ни одной заявки.", [][]tgbotapi.InlineKeyboardButton{
				{tgbotapi.NewInlineKeyboardButtonData("➕ Новая заявка", models.CallbackPitchNew)},
			}, nil
		}

		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton
		for _, req := range requests {
			content.WriteString(fmt.Sprintf("%s <b>№%d</b> %s — %s\n",
				statusEmoji(req.Status), req.ID, req.CreatedAt.Format("02.01.2006"), esc(req.ReleaseArtist)))

			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("№%d %s", req.ID, req.ReleaseArtist),
					fmt.Sprintf("%s%d", models.CallbackOpenPrefix, req.ID)),
			})
		}

		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("➕ Новая заявка", models.CallbackPitchNew),
		})
		return content.String(), keyboard, nil
	})
}

// renderAdminList - список всех заявок для администратора
func (b *Bot) renderAdminList(ctx context.Context, chatID int64, messageID, page int) {
	total, err := b.pitchService.CountAll(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error counting pitch requests")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	params := PaginationParams{
		Ctx:          ctx,
		ChatID:       chatID,
		MessageID:    messageID,
		Page:         page,
		Title:        "🗂 <b>Все заявки на питчинг</b>",
		PagePrefix:   models.CallbackAdminListPrefix,
		BackCallback: models.CallbackPitchMenu,
	}

	b.renderPaginatedList(params, total, b.config.Pitching.PageSize, func(limit, offset int) (string, [][]tgbotapi.InlineKeyboardButton, error) {
		requests, err := b.pitchService.ListAll(ctx, limit, offset)
		if err != nil {
			return "", nil, err
		}
		if len(requests) == 0 {
			return "Заявок пока нет.", nil, nil
		}

		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton
		for _, req := range requests {
			from := req.Username
			if from == "" {
				from = fmt.Sprintf("id:%d", req.TelegramID)
			}
			content.WriteString(fmt.Sprintf("%s <b>№%d</b> %s — %s (%s)\n",
				statusEmoji(req.Status), req.ID, req.CreatedAt.Format("02.01.2006"),
				esc(req.ReleaseArtist), esc(from)))

			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("№%d %s", req.ID, req.ReleaseArtist),
					fmt.Sprintf("%s%d", models.CallbackAdminOpenPrefix, req.ID)),
			})
		}
		return content.String(), keyboard, nil
	})
}
