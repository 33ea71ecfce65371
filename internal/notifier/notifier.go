package notifier

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"pitchbot/internal/domain"
	"pitchbot/internal/events"
	"pitchbot/internal/models"
)

// Студия живет по московскому времени, без перехода на летнее.
var moscow = time.FixedZone("MSK", 3*60*60)

// Notifier is the booking reconciler: a polling loop that cancels
// double-booked slots, sends 24h/1h reminders, auto-cancels unconfirmed
// bookings shortly before start and closes out finished sessions.
type Notifier struct {
	store    domain.BookingStore
	tg       domain.TelegramService
	events   domain.EventPublisher
	admins   []int64
	interval time.Duration
	logger   *zerolog.Logger
	loc      *time.Location
}

func New(
	store domain.BookingStore,
	tg domain.TelegramService,
	publisher domain.EventPublisher,
	admins []int64,
	interval time.Duration,
	logger *zerolog.Logger,
) *Notifier {
	l := logger.With().Str("component", "notifier").Logger()
	return &Notifier{
		store:    store,
		tg:       tg,
		events:   publisher,
		admins:   admins,
		interval: interval,
		logger:   &l,
		loc:      moscow,
	}
}

// Run drives the polling loop until the context is cancelled. The first
// window opens slightly before startup so thresholds crossed moments
// before a restart are not lost.
func (n *Notifier) Run(ctx context.Context) {
	n.logger.Info().Dur("interval", n.interval).Msg("нотификатор запущен")

	prevTick := time.Now().In(n.loc).Add(-(n.interval + 5*time.Second))
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.logger.Info().Msg("нотификатор остановлен")
			return
		case <-ticker.C:
			now := time.Now().In(n.loc)
			n.Pass(ctx, prevTick, now)
			prevTick = now
		}
	}
}

// Pass runs one reconciliation over the half-open window (prevTick, now].
// Exported with explicit instants so the sweep logic is testable without
// a real clock.
func (n *Notifier) Pass(ctx context.Context, prevTick, now time.Time) {
	started := time.Now()

	n.cancelConflicts(ctx)
	n.sendReminders(ctx, prevTick, now)
	n.sweepPassed(ctx, now)

	passesTotal.Inc()
	passDuration.Observe(time.Since(started).Seconds())
}

// startEnd computes the session bounds in studio time. Hours past 23 roll
// into the following day(s).
func (n *Notifier) startEnd(b models.Booking) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", b.Date, n.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("booking %d: bad date %q: %w", b.ID, b.Date, err)
	}
	start := day.Add(time.Duration(b.TimeFrom) * time.Hour)
	end := day.Add(time.Duration(b.TimeTo) * time.Hour)
	return start, end, nil
}

// crossed reports whether t fell inside the half-open window (prev, now].
func crossed(prev, now, t time.Time) bool {
	return prev.Before(t) && !t.After(now)
}

type cell struct {
	date string
	hour int
}

// cancelConflicts walks active bookings in date/time order and claims
// hour cells; a booking that hits an already claimed cell loses and is
// cancelled. Cells the loser claimed before the collision stay claimed.
func (n *Notifier) cancelConflicts(ctx context.Context) {
	bookings, err := n.store.GetActiveBookings(ctx)
	if err != nil {
		n.logger.Error().Err(err).Msg("не удалось получить активные брони")
		return
	}

	cells := make(map[cell]int64)
	for _, b := range bookings {
		for h := b.TimeFrom; h < b.TimeTo; h++ {
			key := cell{date: b.Date, hour: h}
			if _, taken := cells[key]; taken {
				n.cancelConflict(ctx, b)
				break
			}
			cells[key] = b.ID
		}
	}
}

func (n *Notifier) cancelConflict(ctx context.Context, b models.Booking) {
	if err := n.store.SetBookingConfirmed(ctx, b.ID, models.ConfirmedCancelled); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось отменить конфликтную бронь")
		return
	}
	bookingsCancelled.WithLabelValues("conflict").Inc()
	n.logger.Warn().Int64("booking_id", b.ID).Str("date", b.Date).
		Int("time_from", b.TimeFrom).Msg("бронь отменена из-за конфликта по времени")

	text := fmt.Sprintf(
		"❌ Ваша бронь на %s в %02d:00 отменена: это время уже занято другой бронью.",
		displayDate(b, n.loc), b.TimeFrom%24)
	if err := n.tg.SendMessage(b.TelegramID, text); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось уведомить об отмене")
	}

	n.publishBookingEvent(ctx, events.EventBookingCanceled, b, "conflict")
}

// sendReminders applies at most one branch per booking per pass, in
// priority order: 24h reminder, 1h reminder, auto-cancel.
func (n *Notifier) sendReminders(ctx context.Context, prevTick, now time.Time) {
	bookings, err := n.store.GetActiveBookings(ctx)
	if err != nil {
		n.logger.Error().Err(err).Msg("не удалось получить активные брони")
		return
	}

	for _, b := range bookings {
		start, _, err := n.startEnd(b)
		if err != nil {
			n.logger.Warn().Err(err).Msg("пропуск брони с некорректной датой")
			continue
		}

		switch {
		case !b.Notified24h && crossed(prevTick, now, start.Add(-24*time.Hour)):
			n.remind24h(ctx, b, start)
		case !b.Notified1h && b.Confirmed == models.ConfirmedPending &&
			crossed(prevTick, now, start.Add(-time.Hour)):
			n.remind1h(ctx, b)
		case b.Confirmed == models.ConfirmedPending &&
			crossed(prevTick, now, start.Add(-10*time.Minute)):
			n.autoCancel(ctx, b, start)
		}
	}
}

func (n *Notifier) remind24h(ctx context.Context, b models.Booking, start time.Time) {
	text := fmt.Sprintf(
		"⏰ Напоминание: завтра, %s в %02d:00, у вас бронь студии.",
		start.Format("02.01.2006"), b.TimeFrom%24)

	if err := n.tg.SendMessage(b.TelegramID, text); err != nil {
		// Флаг не выставляем, попробуем на следующем проходе
		n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось отправить напоминание за сутки")
		return
	}
	if err := n.store.MarkBookingNotified24h(ctx, b.ID); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось отметить напоминание за сутки")
		return
	}
	remindersSent.WithLabelValues("24h").Inc()
}

func (n *Notifier) remind1h(ctx context.Context, b models.Booking) {
	text := fmt.Sprintf(
		"⏰ Через час, в %02d:00, у вас бронь студии. Пожалуйста, подтвердите, что придёте.",
		b.TimeFrom%24)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтверждаю",
				fmt.Sprintf("%s%d", models.CallbackConfirmBookingPrefix, b.ID)),
		),
	)

	if err := n.tg.SendWithInlineKeyboard(b.TelegramID, text, keyboard); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось отправить напоминание за час")
		return
	}
	if err := n.store.MarkBookingNotified1h(ctx, b.ID); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось отметить напоминание за час")
		return
	}
	remindersSent.WithLabelValues("1h").Inc()
}

func (n *Notifier) autoCancel(ctx context.Context, b models.Booking, start time.Time) {
	// Сначала отмена в БД, потом уведомление
	if err := n.store.SetBookingConfirmed(ctx, b.ID, models.ConfirmedCancelled); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось автоотменить бронь")
		return
	}
	bookingsCancelled.WithLabelValues("unconfirmed").Inc()
	n.logger.Info().Int64("booking_id", b.ID).Msg("бронь автоотменена без подтверждения")

	text := fmt.Sprintf(
		"❌ Бронь на %s в %02d:00 отменена: вы не подтвердили её за час до начала.",
		start.Format("02.01.2006"), b.TimeFrom%24)
	if err := n.tg.SendMessage(b.TelegramID, text); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось уведомить об автоотмене")
	}

	n.publishBookingEvent(ctx, events.EventBookingCanceled, b, "unconfirmed")
}

// sweepPassed closes out confirmed bookings that already ended and asks
// the admins whether the user showed up.
func (n *Notifier) sweepPassed(ctx context.Context, now time.Time) {
	bookings, err := n.store.GetConfirmedBookings(ctx)
	if err != nil {
		n.logger.Error().Err(err).Msg("не удалось получить подтвержденные брони")
		return
	}

	for _, b := range bookings {
		_, end, err := n.startEnd(b)
		if err != nil {
			n.logger.Warn().Err(err).Msg("пропуск брони с некорректной датой")
			continue
		}
		if end.After(now) {
			continue
		}

		if err := n.store.SetBookingConfirmed(ctx, b.ID, models.ConfirmedPassed); err != nil {
			n.logger.Error().Err(err).Int64("booking_id", b.ID).Msg("не удалось закрыть бронь")
			continue
		}
		bookingsPassed.Inc()

		n.notifyPassed(b)
		n.publishBookingEvent(ctx, events.EventBookingPassed, b, "")
	}
}

func (n *Notifier) notifyPassed(b models.Booking) {
	who := b.Username
	if who == "" {
		if chat, err := n.tg.GetChat(b.TelegramID); err == nil && chat.UserName != "" {
			who = "@" + chat.UserName
		} else {
			who = fmt.Sprintf("id:%d", b.TelegramID)
		}
	}

	text := fmt.Sprintf(
		"🏁 Бронь №%d завершена: %s, %s %02d:00–%02d:00. Пользователь приходил?",
		b.ID, who, displayDate(b, n.loc), b.TimeFrom%24, b.TimeTo%24)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Пользователь пришёл",
				fmt.Sprintf("%s%d", models.CallbackUserCamePrefix, b.ID)),
		),
	)

	for _, adminID := range n.admins {
		if err := n.tg.SendHTMLWithInlineKeyboard(adminID, text, keyboard); err != nil {
			n.logger.Error().Err(err).Int64("admin_id", adminID).
				Int64("booking_id", b.ID).Msg("не удалось уведомить администратора о завершении")
		}
	}
}

func (n *Notifier) publishBookingEvent(ctx context.Context, eventType string, b models.Booking, reason string) {
	if n.events == nil {
		return
	}
	err := n.events.PublishJSON(ctx, eventType, events.BookingEventPayload{
		BookingID:  b.ID,
		TelegramID: b.TelegramID,
		Reason:     reason,
	})
	if err != nil {
		n.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("не удалось опубликовать событие")
	}
}

// displayDate renders the session date for humans, rolling hours past 23
// into the real calendar day.
func displayDate(b models.Booking, loc *time.Location) string {
	day, err := time.ParseInLocation("2006-01-02", b.Date, loc)
	if err != nil {
		return b.Date
	}
	return day.Add(time.Duration(b.TimeFrom) * time.Hour).Format("02.01.2006")
}
