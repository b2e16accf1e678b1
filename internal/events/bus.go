// Package events carries "speaker selected" messages from the search side of
// the UI to booking sessions. Delivery is at-least-once and unordered.
package events

import (
	"context"
	"sync"
)

// SpeakerSelected announces that a speaker was picked for a booking session.
type SpeakerSelected struct {
	SessionID string `json:"sessionId"`
	SpeakerID string `json:"speakerId"`
}

type Handler func(SpeakerSelected)

type Bus interface {
	Publish(ctx context.Context, msg SpeakerSelected) error
	// Subscribe delivers messages to fn until ctx is done.
	Subscribe(ctx context.Context, fn Handler) error
}

// LocalBus fans messages out to in-process subscribers.
type LocalBus struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	ch   chan SpeakerSelected
	done chan struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]*subscription)}
}

func (b *LocalBus) Publish(ctx context.Context, msg SpeakerSelected) error {
	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.ch <- msg:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, fn Handler) error {
	s := &subscription{ch: make(chan SpeakerSelected, 16), done: make(chan struct{})}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = s
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-s.ch:
			fn(msg)
		}
	}
}

// Subscribers reports how many subscriptions are live.
func (b *LocalBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
