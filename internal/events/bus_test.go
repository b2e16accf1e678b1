package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBus_FansOut(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got1 := make(chan SpeakerSelected, 1)
	got2 := make(chan SpeakerSelected, 1)
	go bus.Subscribe(ctx, func(m SpeakerSelected) { got1 <- m })
	go bus.Subscribe(ctx, func(m SpeakerSelected) { got2 <- m })

	require.Eventually(t, func() bool { return bus.Subscribers() == 2 }, time.Second, 5*time.Millisecond)

	msg := SpeakerSelected{SessionID: "s1", SpeakerID: "spk-1"}
	require.NoError(t, bus.Publish(ctx, msg))

	assert.Equal(t, msg, <-got1)
	assert.Equal(t, msg, <-got2)
}

func TestLocalBus_UnsubscribesOnCancel(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = bus.Subscribe(ctx, func(SpeakerSelected) {})
		close(done)
	}()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, bus.Subscribers())
	assert.NoError(t, bus.Publish(context.Background(), SpeakerSelected{SpeakerID: "x"}))
}

func TestDecode(t *testing.T) {
	msg, err := decode(`{"sessionId":"s1","speakerId":"spk-9"}`)
	require.NoError(t, err)
	assert.Equal(t, SpeakerSelected{SessionID: "s1", SpeakerID: "spk-9"}, msg)

	_, err = decode(`not json`)
	assert.Error(t, err)
}
