// Package notify delivers run-lifecycle alerts over one or more channels
// (Telegram, Discord). Every notification fans out to all configured senders,
// optionally filtered down to the event types an operator subscribed to.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event classifies a notification for filtering.
type Event string

// Events the optimizer emits.
const (
	// EventRunCompleted fires after a single search finishes with a result.
	EventRunCompleted Event = "run_completed"
	// EventRunFailed fires when a search aborts with an error.
	EventRunFailed Event = "run_failed"
	// EventSweepCompleted fires after a full rarity sweep finishes.
	EventSweepCompleted Event = "sweep_completed"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a single notification.
	Send(ctx context.Context, title, message string) error
	// Name identifies the channel in logs and combined errors.
	Name() string
}

// Notifier fans notifications out to a set of senders, filtered by event.
type Notifier struct {
	senders []Sender
	events  map[Event]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier over the given senders. Notify forwards
// only the listed events; an empty list allows everything.
func NewNotifier(senders []Sender, events []Event, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[Event]bool, len(events))
	for _, e := range events {
		allowed[e] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify forwards the notification to every sender when the event is
// allowed, and silently drops it otherwise.
func (n *Notifier) Notify(ctx context.Context, event Event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", string(event)),
		)
		return nil
	}

	return n.dispatch(ctx, title, message)
}

// NotifyAll delivers to every sender regardless of the event filter.
func (n *Notifier) NotifyAll(ctx context.Context, title, message string) error {
	return n.dispatch(ctx, title, message)
}

// dispatch delivers to every sender, continuing past individual failures,
// and folds whatever failed into one combined error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
