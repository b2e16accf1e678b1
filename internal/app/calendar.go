package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"speaker-booking/internal/booking"
	"speaker-booking/internal/calendar"
)

// GoogleCalendar mirrors confirmed bookings into the caller's Google Calendar.
type GoogleCalendar struct {
	Config   *oauth2.Config
	Location *time.Location
}

// NewGoogleCalendar returns nil when the OAuth client is not configured.
func NewGoogleCalendar(clientID, clientSecret, redirectURL string, loc *time.Location) *GoogleCalendar {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	return &GoogleCalendar{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{gcal.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		Location: loc,
	}
}

// MirrorBooking inserts the booked slot as an event on the primary calendar
// and returns the event id.
func (g *GoogleCalendar) MirrorBooking(ctx context.Context, token *oauth2.Token, speaker booking.Speaker, booked calendar.Booked) (string, error) {
	ev, err := sessionEvent(speaker, booked, g.Location)
	if err != nil {
		return "", err
	}
	srv, err := gcal.NewService(ctx, option.WithHTTPClient(g.Config.Client(ctx, token)))
	if err != nil {
		return "", fmt.Errorf("calendar service: %w", err)
	}
	created, err := srv.Events.Insert("primary", ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, nil
}

func sessionEvent(speaker booking.Speaker, booked calendar.Booked, loc *time.Location) (*gcal.Event, error) {
	day, ok := calendar.ParseKeyDate(booked.DateKey)
	if !ok {
		return nil, fmt.Errorf("unreadable session date %q", booked.DateKey)
	}
	start, err := calendar.ToMinutes(booked.Slot.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := calendar.ToMinutes(booked.Slot.EndTime)
	if err != nil {
		return nil, err
	}

	midnight := time.Date(day.Year, day.Month, day.Day, 0, 0, 0, 0, loc)
	summary := "Speaker session"
	if speaker.Name != "" {
		summary += ": " + speaker.Name
	}
	return &gcal.Event{
		Summary:     summary,
		Description: fmt.Sprintf("Session %s booked for speaker %s", booked.Slot.SessionID, speaker.ID),
		Start: &gcal.EventDateTime{
			DateTime: midnight.Add(time.Duration(start) * time.Minute).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: midnight.Add(time.Duration(end) * time.Minute).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
	}, nil
}

// GET /api/calendar/auth?session_id=
// Starts consent for mirroring a booking session's confirmed slots.
func (a *App) GoogleAuthHandler(c *gin.Context) {
	if a.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Calendar not configured"})
		return
	}
	sessionID := c.Query("session_id")
	if _, ok := a.Hub.Get(sessionID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking session not found"})
		return
	}

	state := mirrorState(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"auth_url":   a.Google.Config.AuthCodeURL(state, oauth2.AccessTypeOffline),
		"state":      state,
		"session_id": sessionID,
	})
}

// GET /oauth2callback
// Hands the token back to the client, which sends it as X-Google-Token
// with its next booking.
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	if a.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google Calendar not configured"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}

	token, err := a.Google.Config.Exchange(c.Request.Context(), code)
	if err != nil {
		a.Logger.Warn("google token exchange failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}
	raw, err := json.Marshal(token)
	if err != nil {
		a.Logger.Error("encode google token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionFromState(c.Query("state")),
		"token":      string(raw),
	})
}

// mirrorState ties the consent round trip to a booking session.
func mirrorState(sessionID string) string {
	return sessionID + ":" + uuid.NewString()
}

func sessionFromState(state string) string {
	id, _, _ := strings.Cut(state, ":")
	return id
}

func parseGoogleToken(raw string) (*oauth2.Token, error) {
	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}
	return &token, nil
}
