package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"speaker-booking/internal/events"
)

type Options struct {
	Now      Clock
	Location *time.Location
	// IdleTimeout closes sessions nobody has touched for this long.
	// Zero keeps sessions until they are closed explicitly.
	IdleTimeout time.Duration
}

// Hub owns the open booking sessions and routes speaker selections from the
// event bus to them.
type Hub struct {
	dir    Directory
	bus    events.Bus
	logger *zap.Logger
	opts   Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub(dir Directory, bus events.Bus, logger *zap.Logger, opts Options) *Hub {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Hub{
		dir:      dir,
		bus:      bus,
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session. With a speaker it loads that speaker right away;
// without one it waits for a selection on the event bus.
func (h *Hub) Open(ctx context.Context, speakerID string) *Session {
	s := newSession(uuid.NewString(), h.dir, h.logger, h.opts.Now, h.opts.Location, speakerID == "")

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	h.logger.Debug("booking session opened", zap.String("session", s.ID), zap.String("speaker", speakerID))
	if speakerID != "" {
		s.SetSpeaker(ctx, speakerID)
	}
	return s
}

func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

func (h *Hub) Close(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[id]; !ok {
		return false
	}
	delete(h.sessions, id)
	return true
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Publish announces a speaker selection for a session.
func (h *Hub) Publish(ctx context.Context, sessionID, speakerID string) error {
	return h.bus.Publish(ctx, events.SpeakerSelected{SessionID: sessionID, SpeakerID: speakerID})
}

// Run consumes speaker selections until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	if h.opts.IdleTimeout > 0 {
		go h.sweepLoop(ctx)
	}
	return h.bus.Subscribe(ctx, func(msg events.SpeakerSelected) {
		h.dispatch(ctx, msg)
	})
}

func (h *Hub) dispatch(ctx context.Context, msg events.SpeakerSelected) {
	if msg.SpeakerID == "" {
		return
	}
	s, ok := h.Get(msg.SessionID)
	if !ok || !s.Listens() {
		h.logger.Debug("speaker selection for unknown or non-listening session",
			zap.String("session", msg.SessionID), zap.String("speaker", msg.SpeakerID))
		return
	}
	// Fetches may finish out of order; the session keeps only the latest speaker's.
	go s.selectFromChannel(ctx, msg.SpeakerID)
}

func (h *Hub) sweepLoop(ctx context.Context) {
	t := time.NewTicker(h.opts.IdleTimeout / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := h.Sweep(); n > 0 {
				h.logger.Info("closed idle booking sessions", zap.Int("count", n))
			}
		}
	}
}

// Sweep closes sessions idle for longer than IdleTimeout.
func (h *Hub) Sweep() int {
	if h.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := h.opts.Now().Add(-h.opts.IdleTimeout)

	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, s := range h.sessions {
		if s.idleSince().Before(cutoff) {
			delete(h.sessions, id)
			n++
		}
	}
	return n
}
