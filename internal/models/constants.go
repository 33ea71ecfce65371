package models

import "time"

// Pitch request statuses.
const (
	StatusNew    = "new"
	StatusViewed = "viewed"
	StatusDone   = "done"
)

// Booking confirmation values.
const (
	ConfirmedCancelled = -1
	ConfirmedPending   = 0
	ConfirmedYes       = 1
	ConfirmedPassed    = 3
)

// Wizard steps, in order. The state machine stores one of these in
// UserState.CurrentStep between messages.
const (
	StepReleaseArtist = "pitch_release_artist"
	StepDescription   = "pitch_description"
	StepPhotosLink    = "pitch_photos_link"
	StepListenLink    = "pitch_listen_link"
	StepClipLink      = "pitch_clip_link"
	StepSocials       = "pitch_socials"
	StepExtra         = "pitch_extra"
	StepPreview       = "pitch_preview"
)

// Callback data tokens.
const (
	CallbackPitchNew    = "pitch_new"
	CallbackPitchSend   = "pitch_send"
	CallbackPitchBack   = "pitch_back"
	CallbackPitchCancel = "pitch_cancel"
	CallbackPitchMenu   = "pitch_menu"
	CallbackNoop        = "pitch_noop"

	CallbackOpenPrefix          = "pitch-open:"
	CallbackDeleteAskPrefix     = "pitch-delete-ask:"
	CallbackDeleteConfirmPrefix = "pitch-delete:"
	CallbackListPrefix          = "pitch-list:"
	CallbackPDFPrefix           = "pitch-pdf:"

	CallbackAdminListPrefix          = "pitch-admin-list:"
	CallbackAdminOpenPrefix          = "pitch-admin-open:"
	CallbackAdminDeleteAskPrefix     = "pitch-admin-delete-ask:"
	CallbackAdminDeleteConfirmPrefix = "pitch-admin-delete:"
	CallbackAdminDonePrefix          = "pitch-admin-done:"
	CallbackAdminPDFPrefix           = "pitch-admin-pdf:"
	CallbackAdminExport              = "pitch-admin-export"

	CallbackConfirmBookingPrefix = "confirm-booking:"
	CallbackUserCamePrefix       = "user-came:"
)

// Defaults.
const (
	DefaultPageSize        = 5
	DefaultPollIntervalSec = 60
	DefaultPDFDir          = "pitching_pdfs"

	DefaultRedisTTL = 24 * time.Hour

	RateLimitMessages = 20
	RateLimitWindow   = time.Minute
)

const ParseModeHTML = "HTML"
