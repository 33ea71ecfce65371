package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStateGetters(t *testing.T) {
	state := &UserState{
		UserID: 100,
		TempData: map[string]interface{}{
			"name":    "Луна",
			"chat_id": int64(42),
			"page":    7,
		},
	}

	assert.Equal(t, "Луна", state.GetString("name"))
	assert.Equal(t, "", state.GetString("missing"))
	assert.Equal(t, "", state.GetString("chat_id"))

	assert.Equal(t, int64(42), state.GetInt64("chat_id"))
	assert.Equal(t, int64(7), state.GetInt64("page"))
	assert.Equal(t, int64(0), state.GetInt64("name"))
}

func TestUserStateGettersNilTempData(t *testing.T) {
	state := &UserState{UserID: 100}

	assert.Equal(t, "", state.GetString("x"))
	assert.Equal(t, int64(0), state.GetInt64("x"))
	assert.Nil(t, state.GetStringMap("x"))
}

// После цикла через redis числа становятся float64, а вложенные карты
// превращаются в map[string]interface{}.
func TestUserStateSurvivesJSONRoundTrip(t *testing.T) {
	state := &UserState{
		UserID:      100,
		CurrentStep: StepDescription,
		TempData: map[string]interface{}{
			"chat_id": int64(42),
		},
		UpdatedAt: time.Now(),
	}
	state.SetAnswer("release_artist", "Луна — Закат")

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var restored UserState
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, int64(42), restored.GetInt64("chat_id"))
	answers := restored.GetStringMap("answers")
	require.NotNil(t, answers)
	assert.Equal(t, "Луна — Закат", answers["release_artist"])
}

func TestSetAnswerAccumulates(t *testing.T) {
	state := &UserState{UserID: 100}

	state.SetAnswer("release_artist", "a")
	state.SetAnswer("description", "b")
	state.SetAnswer("release_artist", "c")

	answers := state.GetStringMap("answers")
	require.NotNil(t, answers)
	assert.Equal(t, "c", answers["release_artist"])
	assert.Equal(t, "b", answers["description"])
}
