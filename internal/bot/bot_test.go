package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchbot/internal/config"
	"pitchbot/internal/database"
	"pitchbot/internal/events"
	"pitchbot/internal/models"
	"pitchbot/internal/repository"
	"pitchbot/internal/service"
)

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
	edit     bool
	document bool
}

// recordingTelegram captures everything the bot pushes to Telegram.
type recordingTelegram struct {
	mu      sync.Mutex
	sent    []sentMessage
	answers []string
}

func (r *recordingTelegram) add(m sentMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
}

func (r *recordingTelegram) last(t *testing.T) sentMessage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

func (r *recordingTelegram) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
	r.answers = nil
}

func (r *recordingTelegram) SendMessage(chatID int64, text string) error {
	r.add(sentMessage{chatID: chatID, text: text})
	return nil
}

func (r *recordingTelegram) SendHTML(chatID int64, text string) error {
	r.add(sentMessage{chatID: chatID, text: text})
	return nil
}

func (r *recordingTelegram) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	r.add(sentMessage{chatID: chatID, text: text, keyboard: &keyboard})
	return nil
}

func (r *recordingTelegram) SendHTMLWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	r.add(sentMessage{chatID: chatID, text: text, keyboard: &keyboard})
	return nil
}

func (r *recordingTelegram) SendDocument(chatID int64, filename string, data []byte, caption string) error {
	r.add(sentMessage{chatID: chatID, text: filename, document: true})
	return nil
}

func (r *recordingTelegram) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	r.add(sentMessage{chatID: chatID, text: text, keyboard: keyboard, edit: true})
	return nil
}

func (r *recordingTelegram) AnswerCallback(callbackID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, text)
	return nil
}

func (r *recordingTelegram) GetChat(chatID int64) (tgbotapi.Chat, error) {
	return tgbotapi.Chat{ID: chatID}, nil
}

func (r *recordingTelegram) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return nil
}

func (r *recordingTelegram) StopReceivingUpdates() {}

type stubRenderer struct{}

func (stubRenderer) Render(req *models.PitchRequest) ([]byte, error) {
	return []byte("%PDF"), nil
}

const (
	testAdminID = int64(900)
	testUserID  = int64(100)
)

func setupBot(t *testing.T) (*Bot, *recordingTelegram, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Pitching: config.PitchingConfig{PDFDir: t.TempDir(), PageSize: 5},
		Admins:   []int64{testAdminID},
	}

	tg := &recordingTelegram{}
	stateRepo := repository.NewMemoryStateRepository(time.Hour)
	stateService := service.NewStateService(stateRepo, 1000, time.Minute, &logger)
	bus := events.NewEventBus()
	pitchService := service.NewPitchService(db, tg, stubRenderer{}, bus, cfg.Admins, cfg.Pitching.PDFDir, &logger)

	b, err := NewBot(tg, cfg, stateService, pitchService, db, bus, nil, &logger)
	require.NoError(t, err)
	return b, tg, db
}

func messageUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, UserName: "luna"},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func commandUpdate(userID int64, command string) tgbotapi.Update {
	u := messageUpdate(userID, "/"+command)
	u.Message.Entities = []tgbotapi.MessageEntity{
		{Type: "bot_command", Offset: 0, Length: len(command) + 1},
	}
	return u
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: &tgbotapi.User{ID: userID, UserName: "luna"},
			Data: data,
			Message: &tgbotapi.Message{
				MessageID: 77,
				Chat:      &tgbotapi.Chat{ID: userID},
				Text:      "исходное сообщение",
			},
		},
	}
}

func TestStartCommandShowsMenu(t *testing.T) {
	b, tg, _ := setupBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, commandUpdate(testUserID, "start"))

	require.Len(t, tg.sent, 2)
	assert.Contains(t, tg.sent[0].text, "Привет")
	menu := tg.sent[1]
	require.NotNil(t, menu.keyboard)
	assert.Len(t, menu.keyboard.InlineKeyboard, 2)
}

func TestMainMenuAdminExtras(t *testing.T) {
	b, tg, _ := setupBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, commandUpdate(testAdminID, "pitching"))

	menu := tg.last(t)
	require.NotNil(t, menu.keyboard)
	assert.Len(t, menu.keyboard.InlineKeyboard, 4)
}

func TestWizardFullFlow(t *testing.T) {
	b, tg, db := setupBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, messageUpdate(testUserID, buttonNewPitch))
	assert.Contains(t, tg.last(t).text, "Шаг 1/7")

	b.handleMessage(ctx, messageUpdate(testUserID, "Луна — Закат"))
	assert.Contains(t, tg.last(t).text, "Шаг 2/7")

	b.handleMessage(ctx, messageUpdate(testUserID, "Меланхоличный синти-поп"))
	assert.Contains(t, tg.last(t).text, "Шаг 3/7")

	// Не Яндекс.Диск: шаг не продвигается
	b.handleMessage(ctx, messageUpdate(testUserID, "https://drive.google.com/xyz"))
	assert.Contains(t, tg.last(t).text, "не ссылка на Яндекс.Диск")

	b.handleMessage(ctx, messageUpdate(testUserID, "https://disk.yandex.ru/d/photos"))
	assert.Contains(t, tg.last(t).text, "Шаг 4/7")

	b.handleMessage(ctx, messageUpdate(testUserID, "https://yadi.sk/d/listen"))
	assert.Contains(t, tg.last(t).text, "Шаг 5/7")

	// Клипа нет
	b.handleMessage(ctx, messageUpdate(testUserID, "-"))
	assert.Contains(t, tg.last(t).text, "Шаг 6/7")

	b.handleMessage(ctx, messageUpdate(testUserID, "https://t.me/luna"))
	assert.Contains(t, tg.last(t).text, "Шаг 7/7")

	b.handleMessage(ctx, messageUpdate(testUserID, "Фит с NOIR, релиз 01.10"))
	preview := tg.last(t)
	assert.Contains(t, preview.text, "Проверьте заявку")
	assert.Contains(t, preview.text, "Луна — Закат")

	// Текст в предпросмотре не принимается
	b.handleMessage(ctx, messageUpdate(testUserID, "еще текст"))
	assert.Contains(t, tg.last(t).text, "Используйте кнопки")

	tg.reset()
	b.handleCallbackQuery(ctx, callbackUpdate(testUserID, models.CallbackPitchSend))

	requests, err := db.ListUserPitchRequests(ctx, testUserID, 10, 0)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, "Луна — Закат", req.ReleaseArtist)
	assert.Equal(t, "https://disk.yandex.ru/d/photos", req.PhotosLink)
	assert.Equal(t, "https://yadi.sk/d/listen", req.ListenLink)
	assert.Empty(t, req.ClipLink)
	assert.Equal(t, "Фит с NOIR, релиз 01.10", req.Extra)
	assert.Equal(t, models.StatusNew, req.Status)

	// Состояние мастера очищено
	state, err := b.stateService.GetState(ctx, testUserID)
	require.NoError(t, err)
	assert.Nil(t, state)

	// Подтверждение пользователю и уведомление админу
	var confirmed, adminNotified bool
	for _, m := range tg.sent {
		if m.chatID == testUserID && strings.Contains(m.text, "отправлена") {
			confirmed = true
		}
		if m.chatID == testAdminID && strings.Contains(m.text, "Новая заявка") {
			adminNotified = true
		}
	}
	assert.True(t, confirmed)
	assert.True(t, adminNotified)
}

func TestWizardBackFromPreview(t *testing.T) {
	b, tg, _ := setupBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, messageUpdate(testUserID, buttonNewPitch))
	answers := []string{
		"Луна — Закат", "описание",
		"https://disk.yandex.ru/d/p", "https://disk.yandex.ru/d/l",
		"-", "https://t.me/luna", "-",
	}
	for _, a := range answers {
		b.handleMessage(ctx, messageUpdate(testUserID, a))
	}
	assert.Contains(t, tg.last(t).text, "Проверьте заявку")

	b.handleCallbackQuery(ctx, callbackUpdate(testUserID, models.CallbackPitchBack))
	assert.Contains(t, tg.last(t).text, "Шаг 7/7")

	b.handleCallbackQuery(ctx, callbackUpdate(testUserID, models.CallbackPitchBack))
	assert.Contains(t, tg.last(t).text, "Шаг 6/7")
}

func TestWizardCancel(t *testing.T) {
	b, tg, _ := setupBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, messageUpdate(testUserID, buttonNewPitch))
	b.handleMessage(ctx, messageUpdate(testUserID, "Луна — Закат"))

	b.handleCallbackQuery(ctx, callbackUpdate(testUserID, models.CallbackPitchCancel))

	state, err := b.stateService.GetState(ctx, testUserID)
	require.NoError(t, err)
	assert.Nil(t, state)

	var cancelled bool
	for _, m := range tg.sent {
		if strings.Contains(m.text, "Заявка отменена") {
			cancelled = true
		}
	}
	assert.True(t, cancelled)
}

func TestAdminCallbacksGuarded(t *testing.T) {
	b, tg, _ := setupBot(t)
	ctx := context.Background()

	for _, data := range []string{
		models.CallbackAdminListPrefix + "0",
		models.CallbackAdminOpenPrefix + "1",
		models.CallbackAdminDonePrefix + "1",
		models.CallbackAdminExport,
		models.CallbackUserCamePrefix + "1",
	} {
		tg.reset()
		b.handleCallbackQuery(ctx, callbackUpdate(testUserID, data))
		require.Len(t, tg.answers, 1, data)
		assert.Equal(t, "Недоступно", tg.answers[0], data)
		assert.Empty(t, tg.sent, data)
	}
}

func TestAdminOpenMarksViewed(t *testing.T) {
	b, tg, db := setupBot(t)
	ctx := context.Background()

	id, err := db.CreatePitchRequest(ctx, &models.PitchRequest{
		TelegramID: testUserID, Username: "luna", ReleaseArtist: "Луна — Закат",
	})
	require.NoError(t, err)

	b.handleCallbackQuery(ctx, callbackUpdate(testAdminID, models.CallbackAdminOpenPrefix+"1"))

	stored, err := db.GetPitchRequest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusViewed, stored.Status)

	card := tg.last(t)
	assert.True(t, card.edit)
	assert.Contains(t, card.text, "Заявка №1")
	assert.Contains(t, card.text, "просмотрена")
}

func TestForeignRequestHiddenFromUser(t *testing.T) {
	b, tg, db := setupBot(t)
	ctx := context.Background()

	_, err := db.CreatePitchRequest(ctx, &models.PitchRequest{
		TelegramID: 555, ReleaseArtist: "чужая",
	})
	require.NoError(t, err)

	b.handleCallbackQuery(ctx, callbackUpdate(testUserID, models.CallbackOpenPrefix+"1"))

	require.Len(t, tg.answers, 1)
	assert.Contains(t, tg.answers[0], "не найдена")
	assert.Empty(t, tg.sent)
}

func TestUserListPagination(t *testing.T) {
	b, tg, db := setupBot(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := db.CreatePitchRequest(ctx, &models.PitchRequest{
			TelegramID: testUserID, ReleaseArtist: "релиз",
		})
		require.NoError(t, err)
	}

	b.renderUserList(ctx, testUserID, testUserID, 0, 0)

	list := tg.last(t)
	assert.Contains(t, list.text, "Мои заявки")
	assert.Contains(t, list.text, "Страница 1 из 2")
	require.NotNil(t, list.keyboard)

	var hasForward bool
	for _, row := range list.keyboard.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil && *btn.CallbackData == models.CallbackListPrefix+"1" {
				hasForward = true
			}
		}
	}
	assert.True(t, hasForward)

	// Вторая страница приходит как правка того же сообщения
	tg.reset()
	b.handleCallbackQuery(ctx, callbackUpdate(testUserID, models.CallbackListPrefix+"1"))
	list = tg.last(t)
	assert.True(t, list.edit)
	assert.Contains(t, list.text, "Страница 2 из 2")
}

func TestConfirmBookingOwnership(t *testing.T) {
	b, tg, db := setupBot(t)
	ctx := context.Background()

	id, err := db.CreateBooking(ctx, &models.Booking{
		TelegramID: testUserID, Username: "luna",
		Date: "2026-09-11", TimeFrom: 12, TimeTo: 14,
	})
	require.NoError(t, err)

	// Чужая бронь недоступна
	b.handleCallbackQuery(ctx, callbackUpdate(555, models.CallbackConfirmBookingPrefix+"1"))
	require.Len(t, tg.answers, 1)
	assert.Equal(t, "Недоступно", tg.answers[0])

	tg.reset()
	b.handleCallbackQuery(ctx, callbackUpdate(testUserID, models.CallbackConfirmBookingPrefix+"1"))
	require.Len(t, tg.answers, 1)
	assert.Contains(t, tg.answers[0], "подтверждена")

	booking, err := db.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmedYes, booking.Confirmed)

	edited := tg.last(t)
	assert.True(t, edited.edit)
	assert.Contains(t, edited.text, "Бронь подтверждена")

	// Повторное нажатие
	tg.reset()
	b.handleCallbackQuery(ctx, callbackUpdate(testUserID, models.CallbackConfirmBookingPrefix+"1"))
	require.Len(t, tg.answers, 1)
	assert.Equal(t, "Бронь уже нельзя подтвердить", tg.answers[0])
}

func TestUserCameAcknowledged(t *testing.T) {
	b, tg, _ := setupBot(t)
	ctx := context.Background()

	b.handleCallbackQuery(ctx, callbackUpdate(testAdminID, models.CallbackUserCamePrefix+"5"))

	require.Len(t, tg.answers, 1)
	assert.Equal(t, "Отмечено ✅", tg.answers[0])
	edited := tg.last(t)
	assert.True(t, edited.edit)
	assert.Contains(t, edited.text, "Пользователь пришёл")
}

func TestExportWithoutRequests(t *testing.T) {
	b, tg, _ := setupBot(t)
	ctx := context.Background()

	b.handleCallbackQuery(ctx, callbackUpdate(testAdminID, models.CallbackAdminExport))

	msg := tg.last(t)
	assert.Contains(t, msg.text, "Заявок пока нет")
	assert.False(t, msg.document)
}

func TestExportSendsDocument(t *testing.T) {
	b, tg, db := setupBot(t)
	ctx := context.Background()

	_, err := db.CreatePitchRequest(ctx, &models.PitchRequest{
		TelegramID: testUserID, Username: "luna", ReleaseArtist: "Луна — Закат",
	})
	require.NoError(t, err)

	b.handleCallbackQuery(ctx, callbackUpdate(testAdminID, models.CallbackAdminExport))

	doc := tg.last(t)
	assert.True(t, doc.document)
	assert.Contains(t, doc.text, ".xlsx")
}

func TestRateLimitForRegularUsers(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Pitching: config.PitchingConfig{PDFDir: t.TempDir(), PageSize: 5},
		Admins:   []int64{testAdminID},
	}

	tg := &recordingTelegram{}
	stateRepo := repository.NewMemoryStateRepository(time.Hour)
	stateService := service.NewStateService(stateRepo, 1, time.Minute, &logger)
	bus := events.NewEventBus()
	pitchService := service.NewPitchService(db, tg, stubRenderer{}, bus, cfg.Admins, cfg.Pitching.PDFDir, &logger)

	b, err := NewBot(tg, cfg, stateService, pitchService, db, bus, nil, &logger)
	require.NoError(t, err)
	ctx := context.Background()

	b.processUpdate(ctx, commandUpdate(testUserID, "start"))
	first := len(tg.sent)
	assert.Greater(t, first, 0)

	b.processUpdate(ctx, commandUpdate(testUserID, "start"))
	assert.Contains(t, tg.last(t).text, "слишком часто")

	// Админ лимиту не подчиняется
	tg.reset()
	for i := 0; i < 5; i++ {
		b.processUpdate(ctx, commandUpdate(testAdminID, "start"))
	}
	for _, m := range tg.sent {
		assert.NotContains(t, m.text, "слишком часто")
	}
}
