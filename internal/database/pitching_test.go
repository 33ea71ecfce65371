package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchbot/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRequest(telegramID int64) *models.PitchRequest {
	return &models.PitchRequest{
		TelegramID:    telegramID,
		Username:      "artist",
		ReleaseArtist: "Закат — Луна",
		Description:   "Дебютный сингл, релиз в пятницу",
		PhotosLink:    "https://disk.yandex.ru/d/abc",
		ListenLink:    "https://disk.yandex.ru/d/def",
		ClipLink:      "",
		Socials:       "https://t.me/luna",
		Extra:         "",
	}
}

func TestPitchRequestCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.CreatePitchRequest(ctx, newTestRequest(100))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := db.GetPitchRequest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Закат — Луна", got.ReleaseArtist)
	assert.Equal(t, models.StatusNew, got.Status)
	assert.Empty(t, got.PDFPath)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, db.SetPitchRequestPDFPath(ctx, id, "pdfs/pitching_request_1.pdf"))
	require.NoError(t, db.SetPitchRequestStatus(ctx, id, models.StatusViewed))

	got, err = db.GetPitchRequest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pdfs/pitching_request_1.pdf", got.PDFPath)
	assert.Equal(t, models.StatusViewed, got.Status)
}

func TestGetPitchRequestNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetPitchRequest(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.SetPitchRequestStatus(context.Background(), 999, models.StatusDone)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUserPitchRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := db.CreatePitchRequest(ctx, newTestRequest(100))
		require.NoError(t, err)
	}
	_, err := db.CreatePitchRequest(ctx, newTestRequest(200))
	require.NoError(t, err)

	count, err := db.CountUserPitchRequests(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	total, err := db.CountPitchRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, total)

	page, err := db.ListUserPitchRequests(ctx, 100, 5, 0)
	require.NoError(t, err)
	require.Len(t, page, 5)
	// Свежие сверху
	assert.Greater(t, page[0].ID, page[4].ID)

	page, err = db.ListUserPitchRequests(ctx, 100, 5, 5)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	all, err := db.ListPitchRequests(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestDeletePitchRequestOwnership(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.CreatePitchRequest(ctx, newTestRequest(100))
	require.NoError(t, err)

	// Чужой пользователь не может удалить
	err = db.DeletePitchRequest(ctx, id, 200)
	assert.ErrorIs(t, err, ErrNotFound)

	// Владелец может
	require.NoError(t, db.DeletePitchRequest(ctx, id, 100))

	_, err = db.GetPitchRequest(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePitchRequestAdminBypass(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.CreatePitchRequest(ctx, newTestRequest(100))
	require.NoError(t, err)

	// ownerID 0 — админ удаляет любую заявку
	require.NoError(t, db.DeletePitchRequest(ctx, id, 0))

	err = db.DeletePitchRequest(ctx, id, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
