package booking

import (
	"sync"

	"go.uber.org/zap"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a user-visible toast.
type Notification struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"variant"`
}

type Notifier interface {
	Notify(n Notification)
}

// Inbox queues notifications until the client next reads its view.
type Inbox struct {
	mu      sync.Mutex
	pending []Notification
	logger  *zap.Logger
}

func NewInbox(logger *zap.Logger) *Inbox {
	return &Inbox{logger: logger}
}

func (in *Inbox) Notify(n Notification) {
	fields := []zap.Field{zap.String("title", n.Title), zap.String("message", n.Message)}
	if n.Severity == SeverityError {
		in.logger.Warn("notify", fields...)
	} else {
		in.logger.Debug("notify", fields...)
	}

	in.mu.Lock()
	in.pending = append(in.pending, n)
	in.mu.Unlock()
}

// Drain returns and clears the queued notifications.
func (in *Inbox) Drain() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.pending
	in.pending = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

func errorToast(err error) Notification {
	return Notification{Title: "Error", Message: err.Error(), Severity: SeverityError}
}
