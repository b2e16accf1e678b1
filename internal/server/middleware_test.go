package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() { gin.SetMode(gin.TestMode) }

func TestRateLimit(t *testing.T) {
	r := NewRouter(zap.NewNop(), []string{"*"}, 2)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLimiterStore_DropsIdleClients(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	store := newLimiterStore(60)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	first := store.get("10.0.0.1")
	store.get("10.0.0.2")
	require.Equal(t, 2, store.size())

	now = now.Add(5 * time.Minute)
	assert.Same(t, first, store.get("10.0.0.1"))

	// .2 has been silent for a full idle period; .1 was seen five minutes ago.
	now = now.Add(limiterIdle - 5*time.Minute)
	store.get("10.0.0.3")
	assert.Equal(t, 2, store.size())

	now = now.Add(limiterIdle)
	assert.NotSame(t, first, store.get("10.0.0.1"))
	assert.Equal(t, 1, store.size())
}

func TestRecovery(t *testing.T) {
	r := NewRouter(zap.NewNop(), nil, 100)
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	r := NewRouter(zap.NewNop(), []string{"https://booking.example.com"}, 100)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://booking.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://booking.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
