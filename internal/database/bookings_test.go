package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchbot/internal/models"
)

func newTestBooking(date string, from, to, confirmed int) *models.Booking {
	return &models.Booking{
		TelegramID: 100,
		Username:   "user",
		Date:       date,
		TimeFrom:   from,
		TimeTo:     to,
		Confirmed:  confirmed,
	}
}

func TestBookingLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.CreateBooking(ctx, newTestBooking("2026-09-01", 12, 14, models.ConfirmedPending))
	require.NoError(t, err)

	b, err := db.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", b.Date)
	assert.Equal(t, models.ConfirmedPending, b.Confirmed)
	assert.False(t, b.Notified24h)
	assert.False(t, b.Notified1h)

	require.NoError(t, db.MarkBookingNotified24h(ctx, id))
	require.NoError(t, db.MarkBookingNotified1h(ctx, id))

	b, err = db.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.True(t, b.Notified24h)
	assert.True(t, b.Notified1h)

	require.NoError(t, db.SetBookingConfirmed(ctx, id, models.ConfirmedCancelled))
	b, err = db.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmedCancelled, b.Confirmed)
}

func TestGetActiveBookingsOrderAndFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.CreateBooking(ctx, newTestBooking("2026-09-02", 10, 12, models.ConfirmedYes))
	require.NoError(t, err)
	_, err = db.CreateBooking(ctx, newTestBooking("2026-09-01", 15, 16, models.ConfirmedPending))
	require.NoError(t, err)
	_, err = db.CreateBooking(ctx, newTestBooking("2026-09-01", 9, 11, models.ConfirmedPending))
	require.NoError(t, err)
	// Отмененные (confirmed = -1) выпадают из выборки
	_, err = db.CreateBooking(ctx, newTestBooking("2026-09-01", 8, 9, models.ConfirmedCancelled))
	require.NoError(t, err)

	active, err := db.GetActiveBookings(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "2026-09-01", active[0].Date)
	assert.Equal(t, 9, active[0].TimeFrom)
	assert.Equal(t, 15, active[1].TimeFrom)
	assert.Equal(t, "2026-09-02", active[2].Date)
}

func TestGetConfirmedBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.CreateBooking(ctx, newTestBooking("2026-09-01", 10, 12, models.ConfirmedYes))
	require.NoError(t, err)
	_, err = db.CreateBooking(ctx, newTestBooking("2026-09-01", 13, 14, models.ConfirmedPending))
	require.NoError(t, err)
	_, err = db.CreateBooking(ctx, newTestBooking("2026-09-01", 15, 16, models.ConfirmedPassed))
	require.NoError(t, err)

	confirmed, err := db.GetConfirmedBookings(ctx)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, 10, confirmed[0].TimeFrom)
}

func TestConfirmIfPending(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.CreateBooking(ctx, newTestBooking("2026-09-01", 10, 12, models.ConfirmedPending))
	require.NoError(t, err)

	ok, err := db.ConfirmIfPending(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторное подтверждение уже не срабатывает
	ok, err = db.ConfirmIfPending(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	// Отмененное не подтверждается
	id2, err := db.CreateBooking(ctx, newTestBooking("2026-09-01", 13, 14, models.ConfirmedCancelled))
	require.NoError(t, err)
	ok, err = db.ConfirmIfPending(ctx, id2)
	require.NoError(t, err)
	assert.False(t, ok)
}
