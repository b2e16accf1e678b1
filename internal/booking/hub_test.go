package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"speaker-booking/internal/events"
)

func runHub(t *testing.T, hub *Hub, bus *events.LocalBus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_SelectionReachesListeningSession(t *testing.T) {
	bus := events.NewLocalBus()
	hub := NewHub(newFakeDirectory(), bus, zap.NewNop(), Options{
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	})
	runHub(t, hub, bus)

	s := hub.Open(context.Background(), "")
	require.True(t, s.Listens())

	require.NoError(t, hub.Publish(context.Background(), s.ID, "spk-b"))
	// Duplicate delivery is harmless.
	require.NoError(t, hub.Publish(context.Background(), s.ID, "spk-b"))

	require.Eventually(t, func() bool {
		v := s.View()
		return v.Speaker != nil && v.Speaker.ID == "spk-b" && len(v.Days) == 31
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.View().IsSpeakerSelected)
}

func TestHub_IgnoresNonListeningAndEmpty(t *testing.T) {
	bus := events.NewLocalBus()
	hub := NewHub(newFakeDirectory(), bus, zap.NewNop(), Options{
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	})
	runHub(t, hub, bus)

	fixed := hub.Open(context.Background(), "spk-a")
	listening := hub.Open(context.Background(), "")

	require.NoError(t, hub.Publish(context.Background(), fixed.ID, "spk-b"))
	require.NoError(t, hub.Publish(context.Background(), listening.ID, ""))
	require.NoError(t, hub.Publish(context.Background(), "nobody", "spk-b"))

	// Give the dispatcher a chance to (not) act.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "spk-a", fixed.SpeakerID())
	assert.Equal(t, "", listening.SpeakerID())
}

func TestHub_OpenGetClose(t *testing.T) {
	hub := newTestHub(newFakeDirectory())
	s := hub.Open(context.Background(), "")

	got, ok := hub.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, hub.Len())

	assert.True(t, hub.Close(s.ID))
	assert.False(t, hub.Close(s.ID))
	_, ok = hub.Get(s.ID)
	assert.False(t, ok)
}

func TestHub_SweepIdleSessions(t *testing.T) {
	now := fixedNow
	hub := NewHub(newFakeDirectory(), events.NewLocalBus(), zap.NewNop(), Options{
		Now:         func() time.Time { return now },
		Location:    time.UTC,
		IdleTimeout: time.Hour,
	})
	old := hub.Open(context.Background(), "")

	now = now.Add(45 * time.Minute)
	fresh := hub.Open(context.Background(), "")

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, hub.Sweep())

	_, ok := hub.Get(old.ID)
	assert.False(t, ok)
	_, ok = hub.Get(fresh.ID)
	assert.True(t, ok)
}
