package bot

import (
	"fmt"
	"html"

	"pitchbot/internal/models"
)

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.IsAdmin(userID)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func statusEmoji(status string) string {
	switch status {
	case models.StatusNew:
		return "🆕"
	case models.StatusViewed:
		return "👀"
	case models.StatusDone:
		return "✅"
	}
	return "❓"
}

func statusLabel(status string) string {
	switch status {
	case models.StatusNew:
		return "новая"
	case models.StatusViewed:
		return "просмотрена"
	case models.StatusDone:
		return "обработана"
	}
	return status
}

func esc(s string) string {
	return html.EscapeString(s)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// requestCard renders the full HTML card of a pitch request.
func requestCard(req *models.PitchRequest, adminView bool) string {
	from := req.Username
	if from == "" {
		from = fmt.Sprintf("id:%d", req.TelegramID)
	}

	card := fmt.Sprintf("%s <b>Заявка №%d</b> (%s)\n", statusEmoji(req.Status), req.ID, statusLabel(req.Status))
	card += fmt.Sprintf("📅 %s\n", req.CreatedAt.Format("02.01.2006 15:04"))
	if adminView {
		card += fmt.Sprintf("👤 %s\n", esc(from))
	}
	card += "\n"
	card += fmt.Sprintf("<b>Артист — релиз:</b> %s\n", esc(req.ReleaseArtist))
	card += fmt.Sprintf("<b>Описание:</b> %s\n", esc(req.Description))
	card += fmt.Sprintf("<b>Фото и обложка:</b> %s\n", esc(req.PhotosLink))
	card += fmt.Sprintf("<b>Прослушивание:</b> %s\n", esc(req.ListenLink))
	card += fmt.Sprintf("<b>Клип:</b> %s\n", esc(orDash(req.ClipLink)))
	card += fmt.Sprintf("<b>Соцсети:</b> %s\n", esc(req.Socials))
	card += fmt.Sprintf("<b>Дополнительно:</b> %s", esc(orDash(req.Extra)))
	return card
}
