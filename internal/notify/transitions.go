package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswidget/internal/domain"
	"github.com/hamed0406/statuswidget/internal/scheduler"
	"github.com/hamed0406/statuswidget/internal/view"
)

// Transitions sends a message when the endpoint flips between up and down.
// A first observation of "down" alerts; a first "up" does not.
type Transitions struct {
	Logger          *zap.Logger
	Notifier        Notifier
	AlertOnRecovery bool
	Timeout         time.Duration

	mu   sync.Mutex
	last view.Status
	wg   sync.WaitGroup
}

func NewTransitions(logger *zap.Logger, n Notifier, alertOnRecovery bool) *Transitions {
	return &Transitions{
		Logger:          logger,
		Notifier:        n,
		AlertOnRecovery: alertOnRecovery,
		Timeout:         10 * time.Second,
		last:            view.StatusChecking,
	}
}

// Prime sets the known status from history loaded at startup, so a restart
// that resumes in the same state does not alert again.
func (t *Transitions) Prime(h domain.History) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = view.StatusOf(h)
}

// Listen is a scheduler.Listener. Sends happen in the background so a slow
// webhook never holds up the poller.
func (t *Transitions) Listen(s scheduler.Snapshot) {
	cur := view.StatusOf(s.History)

	t.mu.Lock()
	prev := t.last
	t.last = cur
	t.mu.Unlock()

	if cur == prev || cur == view.StatusChecking {
		return
	}
	if cur == view.StatusUp && (prev == view.StatusChecking || !t.AlertOnRecovery) {
		return
	}

	title := "🔴 Endpoint DOWN"
	if cur == view.StatusUp {
		title = "🟢 Endpoint RECOVERED"
	}
	text := fmt.Sprintf("URL: %s\nChecked: %s", s.Endpoint, s.LastChecked.Format(time.RFC3339))

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.Timeout)
		defer cancel()
		// best-effort
		if err := t.Notifier.Send(ctx, title, text); err != nil {
			t.Logger.Warn("notify_failed", zap.String("title", title), zap.Error(err))
			return
		}
		t.Logger.Info("notify_sent", zap.String("title", title), zap.String("endpoint", s.Endpoint))
	}()
}

// Wait blocks until pending sends have finished.
func (t *Transitions) Wait() {
	t.wg.Wait()
}
