package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Заявки"

// exportPitchRequests создает Excel файл со всеми заявками и отправляет
// его администратору документом.
func (b *Bot) exportPitchRequests(ctx context.Context, chatID int64) {
	total, err := b.pitchService.CountAll(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error counting pitch requests for export")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if total == 0 {
		b.sendMessage(chatID, "Заявок пока нет, экспортировать нечего.")
		return
	}

	requests, err := b.pitchService.ListAll(ctx, total, 0)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error listing pitch requests for export")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		b.logger.Error().Err(err).Msg("Error creating export sheet")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Дата", "Telegram ID", "Username", "Статус",
		"Артист — релиз", "Описание", "Фото и обложка", "Прослушивание",
		"Клип", "Соцсети", "Дополнительно",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, req := range requests {
		row := i + 2
		values := []interface{}{
			req.ID,
			req.CreatedAt.Format("02.01.2006 15:04"),
			req.TelegramID,
			req.Username,
			statusLabel(req.Status),
			req.ReleaseArtist,
			req.Description,
			req.PhotosLink,
			req.ListenLink,
			req.ClipLink,
			req.Socials,
			req.Extra,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, value)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "B", 18)
	_ = f.SetColWidth(exportSheet, "C", "E", 15)
	_ = f.SetColWidth(exportSheet, "F", "L", 30)

	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		b.logger.Error().Err(err).Msg("Error writing export file")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	fileName := fmt.Sprintf("pitching_requests_%s.xlsx", time.Now().Format("2006-01-02"))
	caption := fmt.Sprintf("Экспорт заявок: %d шт.", len(requests))
	if err := b.tgService.SendDocument(chatID, fileName, buf.Bytes(), caption); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send export file")
	}
}
