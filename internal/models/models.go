package models

import "time"

// PitchRequest is a release pitching request submitted through the wizard.
type PitchRequest struct {
	ID            int64     `json:"id"`
	TelegramID    int64     `json:"telegram_id"`
	Username      string    `json:"username"`
	ReleaseArtist string    `json:"release_artist"`
	Description   string    `json:"description"`
	PhotosLink    string    `json:"photos_link"`
	ListenLink    string    `json:"listen_link"`
	ClipLink      string    `json:"clip_link"`
	Socials       string    `json:"socials"`
	Extra         string    `json:"extra"`
	Status        string    `json:"status"`
	PDFPath       string    `json:"pdf_path"`
	CreatedAt     time.Time `json:"created_at"`
}

// Booking is a studio booking row as seen by the reconciler.
// Date is stored as "2006-01-02"; TimeFrom/TimeTo are whole hours and may
// exceed 23, rolling into the following day(s).
type Booking struct {
	ID          int64  `json:"id"`
	TelegramID  int64  `json:"telegram_id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	TimeFrom    int    `json:"time_from"`
	TimeTo      int    `json:"time_to"`
	Confirmed   int    `json:"confirmed"`
	Notified24h bool   `json:"notified_24h"`
	Notified1h  bool   `json:"notified_1h"`
}

// UserState holds per-user wizard progress. TempData survives a JSON
// round-trip through redis, so numeric values come back as float64.
type UserState struct {
	UserID      int64                  `json:"user_id"`
	CurrentStep string                 `json:"current_step"`
	TempData    map[string]interface{} `json:"temp_data"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func (s *UserState) GetString(key string) string {
	if s.TempData == nil {
		return ""
	}
	if v, ok := s.TempData[key].(string); ok {
		return v
	}
	return ""
}

func (s *UserState) GetInt64(key string) int64 {
	if s.TempData == nil {
		return 0
	}
	switch v := s.TempData[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// GetStringMap returns a nested map value, tolerating the
// map[string]interface{} shape produced by JSON decoding.
func (s *UserState) GetStringMap(key string) map[string]string {
	if s.TempData == nil {
		return nil
	}
	out := make(map[string]string)
	switch m := s.TempData[key].(type) {
	case map[string]string:
		return m
	case map[string]interface{}:
		for k, v := range m {
			if sv, ok := v.(string); ok {
				out[k] = sv
			}
		}
		return out
	}
	return nil
}

// SetAnswer stores a wizard answer under the "answers" sub-map.
func (s *UserState) SetAnswer(field, value string) {
	if s.TempData == nil {
		s.TempData = make(map[string]interface{})
	}
	answers := s.GetStringMap("answers")
	if answers == nil {
		answers = make(map[string]string)
	}
	answers[field] = value
	s.TempData["answers"] = answers
}
