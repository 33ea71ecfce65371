package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchbot/internal/models"
)

func setupRedisRepo(t *testing.T) (*RedisStateRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStateRepository(client, time.Hour), mr
}

func TestRedisStateRoundTrip(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()

	state := &models.UserState{
		UserID:      100,
		CurrentStep: models.StepDescription,
		TempData: map[string]interface{}{
			"answers": map[string]string{"release_artist": "Луна — Закат"},
		},
	}
	require.NoError(t, repo.SetState(ctx, state))

	got, err := repo.GetState(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StepDescription, got.CurrentStep)
	// После JSON-сериализации вложенная карта становится map[string]interface{}
	answers := got.GetStringMap("answers")
	assert.Equal(t, "Луна — Закат", answers["release_artist"])
}

func TestRedisStateMissing(t *testing.T) {
	repo, _ := setupRedisRepo(t)

	got, err := repo.GetState(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisClearState(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 100, CurrentStep: models.StepExtra}))
	require.NoError(t, repo.ClearState(ctx, 100))

	got, err := repo.GetState(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCheckRateLimit(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, 100, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, 100, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisDownReturnsError(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	mr.Close()

	_, err := repo.GetState(context.Background(), 100)
	assert.Error(t, err)
}
