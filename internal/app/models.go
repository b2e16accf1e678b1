package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"speaker-booking/internal/booking"
)

var (
	ErrSpeakerNotFound = errors.New("speaker not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyAssigned = errors.New("speaker already assigned to this session")
)

// Specialities offered by the speaker search.
var Specialities = []string{"Apex", "LWC", "Integrations", "Architecture"}

// SpeakerStore is the speaker directory backing the API.
type SpeakerStore interface {
	booking.Directory
	SearchSpeakers(ctx context.Context, name, speciality string) ([]booking.Speaker, error)
}

type App struct {
	Store    SpeakerStore
	Hub      *booking.Hub
	Google   *GoogleCalendar
	Logger   *zap.Logger
	Location *time.Location
}

// slotRow is one speaker_sessions row as seen by a given speaker.
type slotRow struct {
	SessionID string
	Date      string
	StartTime string
	EndTime   string
	Booked    bool
}

type selectSpeakerReq struct {
	SessionID string `json:"session_id" binding:"required"`
}

type openSessionReq struct {
	SpeakerID string `json:"speaker_id"`
}

type setSpeakerReq struct {
	SpeakerID string `json:"speaker_id"`
}

type pickDateReq struct {
	Date string `json:"date"`
}

type showOnlySelectedReq struct {
	Enabled bool `json:"enabled"`
}

type createBookingReq struct {
	SessionID string `json:"session_id" binding:"required"`
}
