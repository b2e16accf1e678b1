package app

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speaker-booking/internal/booking"
	"speaker-booking/internal/calendar"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSpeakerNotFound), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyAssigned), errors.Is(err, calendar.ErrSlotNotFound):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNoSpeaker):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GET /healthz
func (a *App) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": a.Hub.Len()})
}

// GET /speakers?name=&speciality=
func (a *App) SearchSpeakersHandler(c *gin.Context) {
	speakers, err := a.Store.SearchSpeakers(c.Request.Context(), c.Query("name"), c.Query("speciality"))
	if err != nil {
		a.Logger.Error("speaker search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, speakers)
}

// GET /speakers/specialities
func (a *App) ListSpecialitiesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, Specialities)
}

// GET /speakers/:id
func (a *App) GetSpeakerHandler(c *gin.Context) {
	sp, err := a.Store.SpeakerProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sp)
}

// GET /speakers/:id/slots
func (a *App) GetSpeakerSlotsHandler(c *gin.Context) {
	slots, err := a.Store.SlotsGroupedByDate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if slots == nil {
		slots = calendar.SlotsByDate{}
	}
	c.JSON(http.StatusOK, slots)
}

// POST /speakers/:id/select
// Announces the speaker to the booking session named in the body.
func (a *App) SelectSpeakerHandler(c *gin.Context) {
	var req selectSpeakerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Hub.Publish(c.Request.Context(), req.SessionID, c.Param("id")); err != nil {
		a.Logger.Error("publish speaker selection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"session_id": req.SessionID, "speaker_id": c.Param("id")})
}

// POST /sessions
func (a *App) OpenSessionHandler(c *gin.Context) {
	var req openSessionReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := a.Hub.Open(c.Request.Context(), req.SpeakerID)
	c.JSON(http.StatusCreated, s.View())
}

// session resolves :sid or writes a 404.
func (a *App) session(c *gin.Context) (*booking.Session, bool) {
	s, ok := a.Hub.Get(c.Param("sid"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking session not found"})
		return nil, false
	}
	return s, true
}

// GET /sessions/:sid
func (a *App) GetSessionHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// DELETE /sessions/:sid
func (a *App) CloseSessionHandler(c *gin.Context) {
	if !a.Hub.Close(c.Param("sid")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PUT /sessions/:sid/speaker
func (a *App) SetSessionSpeakerHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req setSpeakerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.SetSpeaker(c.Request.Context(), req.SpeakerID)
	c.JSON(http.StatusOK, s.View())
}

// POST /sessions/:sid/prev
func (a *App) PrevMonthHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	s.PrevMonth()
	c.JSON(http.StatusOK, s.View())
}

// POST /sessions/:sid/next
func (a *App) NextMonthHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	s.NextMonth()
	c.JSON(http.StatusOK, s.View())
}

// POST /sessions/:sid/days/:date/select
func (a *App) SelectDayHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	if !s.SelectDay(c.Param("date")) {
		c.JSON(http.StatusConflict, gin.H{"error": "day is not selectable"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// PUT /sessions/:sid/date
func (a *App) PickDateHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req pickDateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.PickDate(req.Date)
	c.JSON(http.StatusOK, s.View())
}

// PUT /sessions/:sid/show-only-selected
func (a *App) ShowOnlySelectedHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req showOnlySelectedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.ShowOnlySelected(req.Enabled)
	c.JSON(http.StatusOK, s.View())
}

// POST /sessions/:sid/bookings
func (a *App) CreateBookingHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	booked, err := s.BookSlot(ctx, req.SessionID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "view": s.View()})
		return
	}

	var eventID string
	if raw := c.GetHeader("X-Google-Token"); raw != "" && a.Google != nil && booked.DateKey != "" {
		eventID = a.mirror(c, s, raw, booked)
	}

	c.JSON(http.StatusCreated, gin.H{
		"booked":            booked,
		"calendar_event_id": eventID,
		"view":              s.View(),
	})
}

// mirror copies a booking to Google Calendar. Failures only warn; the
// booking itself already stands.
func (a *App) mirror(c *gin.Context, s *booking.Session, raw string, booked calendar.Booked) string {
	token, err := parseGoogleToken(raw)
	if err == nil {
		var id string
		id, err = a.Google.MirrorBooking(c.Request.Context(), token, s.Speaker(), booked)
		if err == nil {
			return id
		}
	}
	a.Logger.Warn("calendar mirror failed",
		zap.String("session", s.ID), zap.String("slot", booked.Slot.SessionID), zap.Error(err))
	s.Notify(booking.Notification{
		Title:    "Calendar sync failed",
		Message:  err.Error(),
		Severity: booking.SeverityWarning,
	})
	return ""
}
