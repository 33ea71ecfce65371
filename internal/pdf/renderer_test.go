package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchbot/internal/models"
)

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer()

	data, err := r.Render(&models.PitchRequest{
		ID:            12,
		TelegramID:    100,
		Username:      "luna",
		ReleaseArtist: "Луна — Закат",
		Description:   "Дебютный сингл",
		PhotosLink:    "https://disk.yandex.ru/d/abc",
		ListenLink:    "https://disk.yandex.ru/d/def",
		Socials:       "https://t.me/luna",
		CreatedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderEmptyOptionalFields(t *testing.T) {
	r := NewRenderer()

	data, err := r.Render(&models.PitchRequest{
		ID:            1,
		TelegramID:    100,
		ReleaseArtist: "A — B",
		Description:   "x",
		PhotosLink:    "https://yadi.sk/d/1",
		ListenLink:    "https://yadi.sk/d/2",
		Socials:       "tg",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
