package notify_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs2trade/tradeupbot/internal/notify"
)

type stubSender struct {
	name   string
	err    error
	titles []string
}

func (s *stubSender) Send(_ context.Context, title, _ string) error {
	s.titles = append(s.titles, title)
	return s.err
}

func (s *stubSender) Name() string { return s.name }

func TestNotifierEventFilter(t *testing.T) {
	rq := require.New(t)
	sender := &stubSender{name: "stub"}
	n := notify.NewNotifier(
		[]notify.Sender{sender},
		[]notify.Event{notify.EventRunCompleted},
		slog.Default(),
	)
	ctx := context.Background()

	rq.NoError(n.Notify(ctx, notify.EventRunCompleted, "done", "50% ROI"))
	rq.NoError(n.Notify(ctx, notify.EventRunFailed, "failed", "scanner down"))
	rq.Equal([]string{"done"}, sender.titles)

	// NotifyAll bypasses the filter.
	rq.NoError(n.NotifyAll(ctx, "urgent", "details"))
	rq.Equal([]string{"done", "urgent"}, sender.titles)
}

func TestNotifierEmptyFilterAllowsEverything(t *testing.T) {
	rq := require.New(t)
	sender := &stubSender{name: "stub"}
	n := notify.NewNotifier([]notify.Sender{sender}, nil, slog.Default())

	rq.NoError(n.Notify(context.Background(), notify.EventSweepCompleted, "sweep", "6 tiers"))
	rq.Equal([]string{"sweep"}, sender.titles)
}

func TestNotifierCollectsSenderErrors(t *testing.T) {
	rq := require.New(t)
	ok := &stubSender{name: "ok"}
	bad := &stubSender{name: "bad", err: errors.New("webhook 500")}
	n := notify.NewNotifier([]notify.Sender{bad, ok}, nil, slog.Default())

	err := n.Notify(context.Background(), notify.EventRunCompleted, "done", "body")
	rq.ErrorContains(err, "1 sender(s) failed")
	rq.ErrorContains(err, "bad")

	// The failing sender did not block delivery to the healthy one.
	rq.Equal([]string{"done"}, ok.titles)
}

func TestNotifierNoSenders(t *testing.T) {
	rq := require.New(t)
	n := notify.NewNotifier(nil, nil, slog.Default())
	rq.NoError(n.Notify(context.Background(), notify.EventRunCompleted, "done", "body"))
}
