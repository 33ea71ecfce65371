package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pitchbot/internal/models"
)

// cloudLinkRe принимает ссылки семейства Яндекс.Диска.
var cloudLinkRe = regexp.MustCompile(`(?i)^https?://(yadi\.sk|disk\.yandex\.[a-z]+)/`)

// clipNone — варианты ответа "клипа нет".
var clipNone = map[string]bool{
	"-": true, "—": true,
	"нет": true, "Нет": true,
	"none": true, "NONE": true,
}

type wizardStep struct {
	state    string
	field    string
	prompt   string
	errorMsg string
	// normalize validates the raw input and returns the stored value.
	normalize func(string) (string, bool)
}

func plainText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func cloudLink(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, cloudLinkRe.MatchString(s)
}

func clipLink(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if clipNone[s] {
		return "", true
	}
	return s, s != ""
}

var wizardSteps = []wizardStep{
	{
		state:     models.StepReleaseArtist,
		field:     "release_artist",
		prompt:    "Шаг 1/7. Укажите артиста и название релиза (например: Луна — Закат).",
		errorMsg:  "Пожалуйста, пришлите артиста и название релиза текстом.",
		normalize: plainText,
	},
	{
		state:     models.StepDescription,
		field:     "description",
		prompt:    "Шаг 2/7. Опишите релиз: жанр, настроение, о чем он.",
		errorMsg:  "Пожалуйста, пришлите описание релиза текстом.",
		normalize: plainText,
	},
	{
		state:     models.StepPhotosLink,
		field:     "photos_link",
		prompt:    "Шаг 3/7. Пришлите ссылку на Яндекс.Диск с фото артиста и обложкой релиза.",
		errorMsg:  "Похоже, это не ссылка на Яндекс.Диск. Пришлите ссылку вида https://disk.yandex.ru/… или https://yadi.sk/…",
		normalize: cloudLink,
	},
	{
		state:     models.StepListenLink,
		field:     "listen_link",
		prompt:    "Шаг 4/7. Пришлите ссылку на Яндекс.Диск для прослушивания релиза.",
		errorMsg:  "Похоже, это не ссылка на Яндекс.Диск. Пришлите ссылку вида https://disk.yandex.ru/… или https://yadi.sk/…",
		normalize: cloudLink,
	},
	{
		state:     models.StepClipLink,
		field:     "clip_link",
		prompt:    "Шаг 5/7. Пришлите ссылку на клип. Если клипа нет — отправьте «-».",
		errorMsg:  "Пришлите ссылку на клип или «-», если клипа нет.",
		normalize: clipLink,
	},
	{
		state:     models.StepSocials,
		field:     "socials",
		prompt:    "Шаг 6/7. Пришлите ссылки на соцсети артиста.",
		errorMsg:  "Пожалуйста, пришлите ссылки на соцсети текстом.",
		normalize: plainText,
	},
	{
		state:     models.StepExtra,
		field:     "extra",
		prompt:    "Шаг 7/7. Дополнительная информация: фиты, бюджет на продвижение, важные даты. Если добавить нечего — отправьте «-».",
		errorMsg:  "Пришлите дополнительную информацию или «-».",
		normalize: clipLink,
	},
}

func stepIndex(state string) int {
	for i, s := range wizardSteps {
		if s.state == state {
			return i
		}
	}
	return -1
}

func wizardKeyboard(stepIdx int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if stepIdx > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", models.CallbackPitchBack),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Отмена", models.CallbackPitchCancel),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) startWizard(ctx context.Context, chatID, userID int64) {
	_, err := b.stateService.UpdateState(ctx, userID, func(state *models.UserState) {
		state.CurrentStep = wizardSteps[0].state
		state.TempData["answers"] = map[string]string{}
	})
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to start wizard")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.sendStepPrompt(chatID, 0)
}

func (b *Bot) sendStepPrompt(chatID int64, stepIdx int) {
	step := wizardSteps[stepIdx]
	if err := b.tgService.SendWithInlineKeyboard(chatID, step.prompt, wizardKeyboard(stepIdx)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send wizard prompt")
	}
}

// handleWizardMessage consumes a text message while the user is inside
// the wizard.
func (b *Bot) handleWizardMessage(ctx context.Context, update tgbotapi.Update, state *models.UserState) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if state.CurrentStep == models.StepPreview {
		b.sendMessage(chatID, "Используйте кнопки под предпросмотром: отправить, назад или отмена.")
		return
	}

	idx := stepIndex(state.CurrentStep)
	if idx < 0 {
		return
	}
	step := wizardSteps[idx]

	value, ok := step.normalize(update.Message.Text)
	if !ok {
		b.sendMessage(chatID, step.errorMsg)
		return
	}

	next := idx + 1
	newState, err := b.stateService.UpdateState(ctx, userID, func(s *models.UserState) {
		s.SetAnswer(step.field, value)
		if next < len(wizardSteps) {
			s.CurrentStep = wizardSteps[next].state
		} else {
			s.CurrentStep = models.StepPreview
		}
	})
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to save wizard answer")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if next < len(wizardSteps) {
		b.sendStepPrompt(chatID, next)
		return
	}
	b.sendPreview(chatID, newState)
}

func (b *Bot) sendPreview(chatID int64, state *models.UserState) {
	answers := state.GetStringMap("answers")

	text := "<b>Проверьте заявку перед отправкой:</b>\n\n"
	text += fmt.Sprintf("<b>Артист — релиз:</b> %s\n", esc(answers["release_artist"]))
	text += fmt.Sprintf("<b>Описание:</b> %s\n", esc(answers["description"]))
	text += fmt.Sprintf("<b>Фото и обложка:</b> %s\n", esc(answers["photos_link"]))
	text += fmt.Sprintf("<b>Прослушивание:</b> %s\n", esc(answers["listen_link"]))
	text += fmt.Sprintf("<b>Клип:</b> %s\n", esc(orDash(answers["clip_link"])))
	text += fmt.Sprintf("<b>Соцсети:</b> %s\n", esc(answers["socials"]))
	text += fmt.Sprintf("<b>Дополнительно:</b> %s", esc(orDash(answers["extra"])))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Отправить", models.CallbackPitchSend),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", models.CallbackPitchBack),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Отмена", models.CallbackPitchCancel),
		),
	)

	if err := b.tgService.SendHTMLWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send preview")
	}
}

// wizardBack steps one question back; from the first question it leaves
// the wizard entirely.
func (b *Bot) wizardBack(ctx context.Context, chatID, userID int64) {
	state, err := b.stateService.GetState(ctx, userID)
	if err != nil || state == nil {
		b.showMainMenu(chatID, userID)
		return
	}

	var prev int
	if state.CurrentStep == models.StepPreview {
		prev = len(wizardSteps) - 1
	} else {
		idx := stepIndex(state.CurrentStep)
		if idx <= 0 {
			b.cancelWizard(ctx, chatID, userID)
			return
		}
		prev = idx - 1
	}

	if err := b.stateService.SetStep(ctx, userID, wizardSteps[prev].state); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to step back")
		return
	}
	b.sendStepPrompt(chatID, prev)
}

func (b *Bot) cancelWizard(ctx context.Context, chatID, userID int64) {
	if err := b.stateService.ClearState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear wizard state")
	}
	b.sendMessage(chatID, "Заявка отменена.")
	b.showMainMenu(chatID, userID)
}

func (b *Bot) submitWizard(ctx context.Context, chatID int64, from *tgbotapi.User) {
	state, err := b.stateService.GetState(ctx, from.ID)
	if err != nil || state == nil || state.CurrentStep != models.StepPreview {
		b.sendMessage(chatID, "Заявка не готова к отправке. Начните заново.")
		return
	}

	answers := state.GetStringMap("answers")
	req := &models.PitchRequest{
		TelegramID:    from.ID,
		Username:      from.UserName,
		ReleaseArtist: answers["release_artist"],
		Description:   answers["description"],
		PhotosLink:    answers["photos_link"],
		ListenLink:    answers["listen_link"],
		ClipLink:      answers["clip_link"],
		Socials:       answers["socials"],
		Extra:         answers["extra"],
	}

	submitted, err := b.pitchService.Submit(ctx, req)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", from.ID).Msg("Failed to submit pitch request")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.PitchesSubmitted.Inc()
	}

	if err := b.stateService.ClearState(ctx, from.ID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", from.ID).Msg("Failed to clear wizard state")
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📮 Мои заявки", models.CallbackListPrefix+"0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ В меню", models.CallbackPitchMenu),
		),
	)
	text := fmt.Sprintf("✅ Заявка №%d отправлена! Мы рассмотрим её и свяжемся с вами.", submitted.ID)
	if err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send confirmation")
	}
}
