package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"speaker-booking/internal/booking"
	"speaker-booking/internal/events"
)

// googleRouter serves the API with Google configured against a local token
// endpoint.
func googleRouter(t *testing.T) (*gin.Engine, *booking.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","refresh_token":"rt-1","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	g := NewGoogleCalendar("client", "secret", "http://localhost/oauth2callback", time.UTC)
	require.NotNil(t, g)
	g.Config.Endpoint = oauth2.Endpoint{AuthURL: tokenSrv.URL + "/auth", TokenURL: tokenSrv.URL + "/token"}

	store := newFakeStore()
	hub := booking.NewHub(store, events.NewLocalBus(), zap.NewNop(), booking.Options{Location: time.UTC})
	a := &App{Store: store, Hub: hub, Google: g, Logger: zap.NewNop(), Location: time.UTC}

	r := gin.New()
	RegisterRoutes(r, a, AuthMiddleware("", []string{testToken}))
	return r, hub
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGoogleAuthHandler(t *testing.T) {
	r, hub := googleRouter(t)

	w := get(r, "/api/calendar/auth?session_id=missing")
	assert.Equal(t, http.StatusNotFound, w.Code)

	s := hub.Open(context.Background(), "")
	w = get(r, "/api/calendar/auth?session_id="+s.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		AuthURL   string `json:"auth_url"`
		State     string `json:"state"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, s.ID, body.SessionID)
	assert.True(t, strings.HasPrefix(body.State, s.ID+":"))
	assert.Contains(t, body.AuthURL, "access_type=offline")
	assert.Equal(t, s.ID, sessionFromState(body.State))
}

func TestGoogleOAuth2Callback(t *testing.T) {
	r, _ := googleRouter(t)

	w := get(r, "/oauth2callback")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/oauth2callback?code=bad-code")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/oauth2callback?code=good-code&state=sess-9:nonce")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sess-9", body.SessionID)

	tok, err := parseGoogleToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "at-1", tok.AccessToken)
	assert.Equal(t, "rt-1", tok.RefreshToken)
}
