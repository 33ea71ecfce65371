package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pitchbot/internal/models"
)

const pitchColumns = `id, telegram_id, COALESCE(username, ''), release_artist, description,
        photos_link, listen_link, COALESCE(clip_link, ''), socials, COALESCE(extra, ''),
        status, COALESCE(pdf_path, ''), created_at`

// CreatePitchRequest сохраняет новую заявку и возвращает её ID.
func (db *DB) CreatePitchRequest(ctx context.Context, req *models.PitchRequest) (int64, error) {
	query := `
        INSERT INTO pitching_requests
            (telegram_id, username, release_artist, description, photos_link,
             listen_link, clip_link, socials, extra, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	status := req.Status
	if status == "" {
		status = models.StatusNew
	}
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := db.db.ExecContext(ctx, query,
		req.TelegramID,
		req.Username,
		req.ReleaseArtist,
		req.Description,
		req.PhotosLink,
		req.ListenLink,
		req.ClipLink,
		req.Socials,
		req.Extra,
		status,
		createdAt,
	)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	req.ID = id
	req.Status = status
	req.CreatedAt = createdAt
	return id, nil
}

// GetPitchRequest возвращает заявку по ID.
func (db *DB) GetPitchRequest(ctx context.Context, id int64) (*models.PitchRequest, error) {
	query := `SELECT ` + pitchColumns + ` FROM pitching_requests WHERE id = ?`

	var req models.PitchRequest
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.TelegramID,
		&req.Username,
		&req.ReleaseArtist,
		&req.Description,
		&req.PhotosLink,
		&req.ListenLink,
		&req.ClipLink,
		&req.Socials,
		&req.Extra,
		&req.Status,
		&req.PDFPath,
		&req.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// SetPitchRequestPDFPath сохраняет путь к сгенерированному PDF.
func (db *DB) SetPitchRequestPDFPath(ctx context.Context, id int64, path string) error {
	_, err := db.db.ExecContext(ctx,
		`UPDATE pitching_requests SET pdf_path = ? WHERE id = ?`, path, id)
	return err
}

// SetPitchRequestStatus обновляет статус заявки.
func (db *DB) SetPitchRequestStatus(ctx context.Context, id int64, status string) error {
	result, err := db.db.ExecContext(ctx,
		`UPDATE pitching_requests SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUserPitchRequests возвращает число заявок пользователя.
func (db *DB) CountUserPitchRequests(ctx context.Context, telegramID int64) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pitching_requests WHERE telegram_id = ?`, telegramID).Scan(&count)
	return count, err
}

// ListUserPitchRequests возвращает страницу заявок пользователя,
// свежие сверху.
func (db *DB) ListUserPitchRequests(ctx context.Context, telegramID int64, limit, offset int) ([]models.PitchRequest, error) {
	query := `SELECT ` + pitchColumns + `
        FROM pitching_requests WHERE telegram_id = ?
        ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := db.db.QueryContext(ctx, query, telegramID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPitchRequests(rows)
}

// CountPitchRequests возвращает общее число заявок.
func (db *DB) CountPitchRequests(ctx context.Context) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pitching_requests`).Scan(&count)
	return count, err
}

// ListPitchRequests возвращает страницу всех заявок, свежие сверху.
func (db *DB) ListPitchRequests(ctx context.Context, limit, offset int) ([]models.PitchRequest, error) {
	query := `SELECT ` + pitchColumns + `
        FROM pitching_requests ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := db.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPitchRequests(rows)
}

// DeletePitchRequest удаляет заявку. ownerID 0 — админский путь без
// проверки владельца.
func (db *DB) DeletePitchRequest(ctx context.Context, id, ownerID int64) error {
	var (
		result sql.Result
		err    error
	)
	if ownerID == 0 {
		result, err = db.db.ExecContext(ctx,
			`DELETE FROM pitching_requests WHERE id = ?`, id)
	} else {
		result, err = db.db.ExecContext(ctx,
			`DELETE FROM pitching_requests WHERE id = ? AND telegram_id = ?`, id, ownerID)
	}
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPitchRequests(rows *sql.Rows) ([]models.PitchRequest, error) {
	var requests []models.PitchRequest
	for rows.Next() {
		var req models.PitchRequest
		err := rows.Scan(
			&req.ID,
			&req.TelegramID,
			&req.Username,
			&req.ReleaseArtist,
			&req.Description,
			&req.PhotosLink,
			&req.ListenLink,
			&req.ClipLink,
			&req.Socials,
			&req.Extra,
			&req.Status,
			&req.PDFPath,
			&req.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
