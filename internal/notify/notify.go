package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier delivers a status-change message somewhere outside the process.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi delivers to every notifier, skipping nil entries. All are tried;
// the first error is returned.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Log records status changes in the service log. It never fails.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(_ context.Context, title, text string) error {
	l.Logger.Warn("status_changed", zap.String("title", title), zap.String("detail", text))
	return nil
}
