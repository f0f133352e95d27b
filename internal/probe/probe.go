package probe

import (
	"context"

	"github.com/hamed0406/statuswidget/internal/domain"
)

// Outcome is the result of a single probe.
//
// Fields:
//   - Result: the {t, ok} pair that goes into the history.
//   - StatusCode: HTTP status when a response arrived; 0 for transport errors.
//   - LatencyMS, Reason: for logs and metrics only, never persisted.
type Outcome struct {
	Result     domain.CheckResult
	StatusCode int
	LatencyMS  float64
	Reason     string
}

// TransportError reports whether the probe failed before any response arrived.
func (o Outcome) TransportError() bool {
	return !o.Result.Success && o.StatusCode == 0
}

// Prober performs one health check against endpoint. It never fails:
// every error is folded into an unsuccessful Outcome.
type Prober interface {
	Probe(ctx context.Context, endpoint string) Outcome
}
