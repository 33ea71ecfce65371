package domain

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pitchbot/internal/models"
)

// PitchStore is the persistence contract for pitch requests.
type PitchStore interface {
	CreatePitchRequest(ctx context.Context, req *models.PitchRequest) (int64, error)
	GetPitchRequest(ctx context.Context, id int64) (*models.PitchRequest, error)
	SetPitchRequestPDFPath(ctx context.Context, id int64, path string) error
	SetPitchRequestStatus(ctx context.Context, id int64, status string) error
	CountUserPitchRequests(ctx context.Context, telegramID int64) (int, error)
	ListUserPitchRequests(ctx context.Context, telegramID int64, limit, offset int) ([]models.PitchRequest, error)
	CountPitchRequests(ctx context.Context) (int, error)
	ListPitchRequests(ctx context.Context, limit, offset int) ([]models.PitchRequest, error)
	// DeletePitchRequest removes a request. ownerID 0 bypasses the
	// ownership check (admin path).
	DeletePitchRequest(ctx context.Context, id, ownerID int64) error
}

// BookingStore is the persistence contract the reconciler runs against.
type BookingStore interface {
	// GetActiveBookings returns bookings with confirmed >= 0 ordered by
	// date, then time_from.
	GetActiveBookings(ctx context.Context) ([]models.Booking, error)
	GetConfirmedBookings(ctx context.Context) ([]models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) (int64, error)
	SetBookingConfirmed(ctx context.Context, id int64, confirmed int) error
	// ConfirmIfPending sets confirmed=1 only while the booking is still
	// pending; reports whether the transition happened.
	ConfirmIfPending(ctx context.Context, id int64) (bool, error)
	MarkBookingNotified24h(ctx context.Context, id int64) error
	MarkBookingNotified1h(ctx context.Context, id int64) error
}

// StateRepository stores per-user wizard state.
type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// StateManager is the wizard-facing view over StateRepository.
type StateManager interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetStep(ctx context.Context, userID int64, step string) error
	UpdateState(ctx context.Context, userID int64, fn func(*models.UserState)) (*models.UserState, error)
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64) (bool, error)
}

// TelegramSender is the thin surface of the bot API client we depend on.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramService wraps TelegramSender with convenience helpers.
type TelegramService interface {
	SendMessage(chatID int64, text string) error
	SendHTML(chatID int64, text string) error
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	SendHTMLWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	SendDocument(chatID int64, filename string, data []byte, caption string) error
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID, text string) error
	GetChat(chatID int64) (tgbotapi.Chat, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// DocumentRenderer renders a pitch request to a downloadable document.
type DocumentRenderer interface {
	Render(req *models.PitchRequest) ([]byte, error)
}

// PitchManager is the application service behind the bot handlers.
type PitchManager interface {
	Submit(ctx context.Context, req *models.PitchRequest) (*models.PitchRequest, error)
	Get(ctx context.Context, id, requesterID int64, admin bool) (*models.PitchRequest, error)
	Delete(ctx context.Context, id, requesterID int64, admin bool) error
	MarkViewed(ctx context.Context, id int64) error
	MarkDone(ctx context.Context, id int64) error
	CountUser(ctx context.Context, telegramID int64) (int, error)
	ListUser(ctx context.Context, telegramID int64, limit, offset int) ([]models.PitchRequest, error)
	CountAll(ctx context.Context) (int, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.PitchRequest, error)
}

// EventPublisher publishes in-process lifecycle events.
type EventPublisher interface {
	PublishJSON(ctx context.Context, eventType string, payload interface{}) error
}
