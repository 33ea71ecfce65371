package bot

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pitchbot/internal/events"
	"pitchbot/internal/models"
	"pitchbot/internal/service"
)

func parseCallbackID(data, prefix string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
}

func (b *Bot) answerCallback(callbackID, text string) {
	if err := b.tgService.AnswerCallback(callbackID, text); err != nil {
		b.logger.Error().Err(err).Msg("Failed to answer callback")
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	if cb.Message == nil {
		return
	}
	data := cb.Data
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	userID := cb.From.ID

	if b.metrics != nil {
		b.metrics.CallbacksProcessed.Inc()
	}

	switch {
	case data == models.CallbackNoop:
		b.answerCallback(cb.ID, "")

	case data == models.CallbackPitchNew:
		b.answerCallback(cb.ID, "")
		b.startWizard(ctx, chatID, userID)

	case data == models.CallbackPitchMenu:
		b.answerCallback(cb.ID, "")
		b.showMainMenu(chatID, userID)

	case data == models.CallbackPitchBack:
		b.answerCallback(cb.ID, "")
		b.wizardBack(ctx, chatID, userID)

	case data == models.CallbackPitchCancel:
		b.answerCallback(cb.ID, "")
		b.cancelWizard(ctx, chatID, userID)

	case data == models.CallbackPitchSend:
		b.answerCallback(cb.ID, "")
		b.submitWizard(ctx, chatID, cb.From)

	case data == models.CallbackAdminExport:
		if !b.isAdmin(userID) {
			b.answerCallback(cb.ID, "Недоступно")
			return
		}
		b.answerCallback(cb.ID, "Готовлю файл…")
		b.exportPitchRequests(ctx, chatID)

	case strings.HasPrefix(data, models.CallbackListPrefix):
		page, err := parseCallbackID(data, models.CallbackListPrefix)
		if err != nil {
			b.answerCallback(cb.ID, "")
			return
		}
		b.answerCallback(cb.ID, "")
		b.renderUserList(ctx, chatID, userID, messageID, int(page))

	case strings.HasPrefix(data, models.CallbackOpenPrefix):
		b.openRequestCallback(ctx, cb, models.CallbackOpenPrefix, false)

	case strings.HasPrefix(data, models.CallbackDeleteAskPrefix):
		b.askDeleteCallback(cb, models.CallbackDeleteAskPrefix, false)

	case strings.HasPrefix(data, models.CallbackDeleteConfirmPrefix):
		b.deleteRequestCallback(ctx, cb, models.CallbackDeleteConfirmPrefix, false)

	case strings.HasPrefix(data, models.CallbackPDFPrefix):
		b.sendStoredPDF(ctx, cb, models.CallbackPDFPrefix, false)

	case strings.HasPrefix(data, models.CallbackAdminListPrefix):
		if !b.isAdmin(userID) {
			b.answerCallback(cb.ID, "Недоступно")
			return
		}
		page, err := parseCallbackID(data, models.CallbackAdminListPrefix)
		if err != nil {
			b.answerCallback(cb.ID, "")
			return
		}
		b.answerCallback(cb.ID, "")
		b.renderAdminList(ctx, chatID, messageID, int(page))

	case strings.HasPrefix(data, models.CallbackAdminOpenPrefix):
		if !b.isAdmin(userID) {
			b.answerCallback(cb.ID, "Недоступно")
			return
		}
		b.openRequestCallback(ctx, cb, models.CallbackAdminOpenPrefix, true)

	case strings.HasPrefix(data, models.CallbackAdminDeleteAskPrefix):
		if !b.isAdmin(userID) {
			b.answerCallback(cb.ID, "Недоступно")
			return
		}
		b.askDeleteCallback(cb, models.CallbackAdminDeleteAskPrefix, true)

	case strings.HasPrefix(data, models.CallbackAdminDeleteConfirmPrefix):
		if !b.isAdmin(userID) {
			b.answerCallback(cb.ID, "Недоступно")
			return
		}
		b.deleteRequestCallback(ctx, cb, models.CallbackAdminDeleteConfirmPrefix, true)

	case strings.HasPrefix(data, models.CallbackAdminDonePrefix):
		if !b.isAdmin(userID) {
			b.answerCallback(cb.ID, "Недоступно")
			return
		}
		b.markDoneCallback(ctx, cb)

	case strings.HasPrefix(data, models.CallbackAdminPDFPrefix):
		if !b.isAdmin(userID) {
			b.answerCallback(cb.ID, "Недоступно")
			return
		}
		b.sendStoredPDF(ctx, cb, models.CallbackAdminPDFPrefix, true)

	case strings.HasPrefix(data, models.CallbackConfirmBookingPrefix):
		b.confirmBookingCallback(ctx, cb)

	case strings.HasPrefix(data, models.CallbackUserCamePrefix):
		if !b.isAdmin(userID) {
			b.answerCallback(cb.ID, "Недоступно")
			return
		}
		b.userCameCallback(ctx, cb)

	default:
		b.answerCallback(cb.ID, "")
	}
}

func (b *Bot) requestCardKeyboard(req *models.PitchRequest, adminView bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if adminView {
		if req.PDFPath != "" {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📄 Скачать PDF",
					fmt.Sprintf("%s%d", models.CallbackAdminPDFPrefix, req.ID)),
			))
		}
		if req.Status != models.StatusDone {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Обработана",
					fmt.Sprintf("%s%d", models.CallbackAdminDonePrefix, req.ID)),
			))
		}
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить",
					fmt.Sprintf("%s%d", models.CallbackAdminDeleteAskPrefix, req.ID)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⬅️ К списку", models.CallbackAdminListPrefix+"0"),
			),
		)
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	if req.PDFPath != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Скачать PDF",
				fmt.Sprintf("%s%d", models.CallbackPDFPrefix, req.ID)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить",
				fmt.Sprintf("%s%d", models.CallbackDeleteAskPrefix, req.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К списку", models.CallbackListPrefix+"0"),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) openRequestCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, prefix string, adminView bool) {
	id, err := parseCallbackID(cb.Data, prefix)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	req, err := b.pitchService.Get(ctx, id, cb.From.ID, adminView)
	if err != nil {
		b.answerCallback(cb.ID, b.getErrorMessage(err))
		return
	}

	if adminView && req.Status == models.StatusNew {
		// Просмотр отмечается по возможности, ошибка не мешает показу
		if err := b.pitchService.MarkViewed(ctx, id); err != nil {
			b.logger.Warn().Err(err).Int64("request_id", id).Msg("Failed to mark request viewed")
		} else {
			req.Status = models.StatusViewed
		}
	}

	b.answerCallback(cb.ID, "")
	keyboard := b.requestCardKeyboard(req, adminView)
	if err := b.tgService.EditMessage(cb.Message.Chat.ID, cb.Message.MessageID, requestCard(req, adminView), &keyboard); err != nil {
		b.logger.Error().Err(err).Int64("request_id", id).Msg("Failed to show request card")
	}
}

func (b *Bot) askDeleteCallback(cb *tgbotapi.CallbackQuery, prefix string, adminView bool) {
	id, err := parseCallbackID(cb.Data, prefix)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	confirmPrefix := models.CallbackDeleteConfirmPrefix
	backPrefix := models.CallbackOpenPrefix
	if adminView {
		confirmPrefix = models.CallbackAdminDeleteConfirmPrefix
		backPrefix = models.CallbackAdminOpenPrefix
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Да, удалить", fmt.Sprintf("%s%d", confirmPrefix, id)),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Нет", fmt.Sprintf("%s%d", backPrefix, id)),
		),
	)

	b.answerCallback(cb.ID, "")
	text := fmt.Sprintf("Удалить заявку №%d? Это действие необратимо.", id)
	if err := b.tgService.EditMessage(cb.Message.Chat.ID, cb.Message.MessageID, text, &keyboard); err != nil {
		b.logger.Error().Err(err).Int64("request_id", id).Msg("Failed to show delete confirmation")
	}
}

func (b *Bot) deleteRequestCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, prefix string, adminView bool) {
	id, err := parseCallbackID(cb.Data, prefix)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	if err := b.pitchService.Delete(ctx, id, cb.From.ID, adminView); err != nil {
		b.answerCallback(cb.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(cb.ID, "Заявка удалена")
	if adminView {
		b.renderAdminList(ctx, cb.Message.Chat.ID, cb.Message.MessageID, 0)
		return
	}
	b.renderUserList(ctx, cb.Message.Chat.ID, cb.From.ID, cb.Message.MessageID, 0)
}

func (b *Bot) markDoneCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	id, err := parseCallbackID(cb.Data, models.CallbackAdminDonePrefix)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	if err := b.pitchService.MarkDone(ctx, id); err != nil {
		b.answerCallback(cb.ID, b.getErrorMessage(err))
		return
	}

	req, err := b.pitchService.Get(ctx, id, cb.From.ID, true)
	if err != nil {
		b.answerCallback(cb.ID, b.getErrorMessage(err))
		return
	}

	b.answerCallback(cb.ID, "Отмечена как обработанная")
	keyboard := b.requestCardKeyboard(req, true)
	if err := b.tgService.EditMessage(cb.Message.Chat.ID, cb.Message.MessageID, requestCard(req, true), &keyboard); err != nil {
		b.logger.Error().Err(err).Int64("request_id", id).Msg("Failed to refresh request card")
	}
}

func (b *Bot) sendStoredPDF(ctx context.Context, cb *tgbotapi.CallbackQuery, prefix string, adminView bool) {
	id, err := parseCallbackID(cb.Data, prefix)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	req, err := b.pitchService.Get(ctx, id, cb.From.ID, adminView)
	if err != nil {
		b.answerCallback(cb.ID, b.getErrorMessage(err))
		return
	}
	if req.PDFPath == "" {
		b.answerCallback(cb.ID, "PDF для этой заявки не сформирован")
		return
	}

	data, err := os.ReadFile(req.PDFPath)
	if err != nil {
		b.logger.Error().Err(err).Str("path", req.PDFPath).Msg("Failed to read stored PDF")
		b.answerCallback(cb.ID, "Не удалось прочитать PDF")
		return
	}

	b.answerCallback(cb.ID, "")
	caption := fmt.Sprintf("PDF заявки №%d", req.ID)
	if err := b.tgService.SendDocument(cb.Message.Chat.ID, service.PDFFilename(req.ID), data, caption); err != nil {
		b.logger.Error().Err(err).Int64("request_id", id).Msg("Failed to send PDF")
	}
}

func (b *Bot) confirmBookingCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	id, err := parseCallbackID(cb.Data, models.CallbackConfirmBookingPrefix)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	booking, err := b.bookingStore.GetBooking(ctx, id)
	if err != nil {
		b.answerCallback(cb.ID, b.getErrorMessage(err))
		return
	}
	if booking.TelegramID != cb.From.ID {
		b.answerCallback(cb.ID, "Недоступно")
		return
	}

	ok, err := b.bookingStore.ConfirmIfPending(ctx, id)
	if err != nil {
		b.answerCallback(cb.ID, b.getErrorMessage(err))
		return
	}
	if !ok {
		b.answerCallback(cb.ID, "Бронь уже нельзя подтвердить")
		return
	}

	if err := b.eventBus.PublishJSON(ctx, events.EventBookingConfirmed, events.BookingEventPayload{
		BookingID:  id,
		TelegramID: cb.From.ID,
	}); err != nil {
		b.logger.Warn().Err(err).Int64("booking_id", id).Msg("Failed to publish event")
	}

	b.answerCallback(cb.ID, "Бронь подтверждена ✅")
	text := cb.Message.Text + "\n\n✅ Бронь подтверждена."
	if err := b.tgService.EditMessage(cb.Message.Chat.ID, cb.Message.MessageID, text, nil); err != nil {
		b.logger.Error().Err(err).Int64("booking_id", id).Msg("Failed to edit confirmation message")
	}
}

func (b *Bot) userCameCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	id, err := parseCallbackID(cb.Data, models.CallbackUserCamePrefix)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	b.logger.Info().Int64("booking_id", id).Int64("admin_id", cb.From.ID).Msg("Attendance acknowledged")

	b.answerCallback(cb.ID, "Отмечено ✅")
	text := cb.Message.Text + "\n\n✅ Пользователь пришёл."
	if err := b.tgService.EditMessage(cb.Message.Chat.ID, cb.Message.MessageID, text, nil); err != nil {
		b.logger.Error().Err(err).Int64("booking_id", id).Msg("Failed to edit attendance message")
	}
}
