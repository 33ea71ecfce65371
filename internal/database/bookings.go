package database

import (
	"context"
	"database/sql"
	"errors"

	"pitchbot/internal/models"
)

const bookingColumns = `id, telegram_id, COALESCE(username, ''), date, time_from, time_to,
        confirmed, notified_24h, notified_1h`

// CreateBooking создает бронирование и возвращает его ID.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) (int64, error) {
	query := `
        INSERT INTO bookings (telegram_id, username, date, time_from, time_to, confirmed, notified_24h, notified_1h)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	result, err := db.db.ExecContext(ctx, query,
		b.TelegramID, b.Username, b.Date, b.TimeFrom, b.TimeTo,
		b.Confirmed, b.Notified24h, b.Notified1h)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	b.ID = id
	return id, nil
}

// GetActiveBookings возвращает неотмененные бронирования в порядке
// date, time_from.
func (db *DB) GetActiveBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
        FROM bookings WHERE confirmed >= 0
        ORDER BY date, time_from`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetConfirmedBookings возвращает подтвержденные бронирования.
func (db *DB) GetConfirmedBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
        FROM bookings WHERE confirmed = 1
        ORDER BY date, time_from`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetBooking возвращает бронирование по ID.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	var b models.Booking
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.TelegramID, &b.Username, &b.Date, &b.TimeFrom, &b.TimeTo,
		&b.Confirmed, &b.Notified24h, &b.Notified1h)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SetBookingConfirmed выставляет значение confirmed.
func (db *DB) SetBookingConfirmed(ctx context.Context, id int64, confirmed int) error {
	_, err := db.db.ExecContext(ctx,
		`UPDATE bookings SET confirmed = ? WHERE id = ?`, confirmed, id)
	return err
}

// ConfirmIfPending подтверждает бронирование, только пока оно еще в
// ожидании. Возвращает true, если переход состоялся.
func (db *DB) ConfirmIfPending(ctx context.Context, id int64) (bool, error) {
	result, err := db.db.ExecContext(ctx,
		`UPDATE bookings SET confirmed = 1 WHERE id = ? AND confirmed = 0`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkBookingNotified24h отмечает отправку напоминания за сутки.
func (db *DB) MarkBookingNotified24h(ctx context.Context, id int64) error {
	_, err := db.db.ExecContext(ctx,
		`UPDATE bookings SET notified_24h = 1 WHERE id = ?`, id)
	return err
}

// MarkBookingNotified1h отмечает отправку напоминания за час.
func (db *DB) MarkBookingNotified1h(ctx context.Context, id int64) error {
	_, err := db.db.ExecContext(ctx,
		`UPDATE bookings SET notified_1h = 1 WHERE id = ?`, id)
	return err
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(
			&b.ID, &b.TelegramID, &b.Username, &b.Date, &b.TimeFrom, &b.TimeTo,
			&b.Confirmed, &b.Notified24h, &b.Notified1h)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
