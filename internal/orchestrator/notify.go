package orchestrator

import (
	"log/slog"
	"time"

	"github.com/foundme/foundme/internal/model"
)

// Notification announces that a session reached a terminal state.
type Notification struct {
	SessionID   string
	OwnerID     string
	State       model.SessionState
	ResultCount int
	Reason      string
	At          time.Time
}

// Notifier delivers terminal-state notifications without ever blocking the
// session that produced them. Deliveries go through a buffered channel; a
// full buffer drops the notification and counts the drop. Missing a
// notification is acceptable, stalling a session to deliver one is not.
type Notifier struct {
	ch     chan Notification
	logger *slog.Logger
}

// NewNotifier creates a notifier with the given buffer depth.
func NewNotifier(buffer int, logger *slog.Logger) *Notifier {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		ch:     make(chan Notification, buffer),
		logger: logger,
	}
}

// Publish enqueues a notification, dropping it when the buffer is full.
func (n *Notifier) Publish(note Notification) {
	select {
	case n.ch <- note:
	default:
		n.logger.Warn("notification dropped, buffer full",
			"session_id", note.SessionID,
			"state", note.State.String())
	}
}

// C returns the receive side for consumers (webhook dispatchers, test
// assertions). Consumers that fall behind lose notifications rather than
// slowing sessions down.
func (n *Notifier) C() <-chan Notification {
	return n.ch
}
