package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/statuswidget/internal/domain"
)

type HTTPChecker struct {
	Client *http.Client
	Now    func() time.Time
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
		Now:    time.Now,
	}
}

// Probe issues a single uncached GET. Success means a 2xx response; the
// timestamp is taken before the request starts, whatever the outcome.
func (h *HTTPChecker) Probe(ctx context.Context, endpoint string) Outcome {
	start := h.Now()
	began := time.Now()
	fail := func(reason string) Outcome {
		return Outcome{
			Result:    domain.NewCheckResult(start, false),
			LatencyMS: float64(time.Since(began).Microseconds()) / 1000,
			Reason:    reason,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail(err.Error())
	}
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := h.Client.Do(req)
	if err != nil {
		return fail(err.Error())
	}
	defer resp.Body.Close()
	// body is ignored; drain a little so the connection can be reused
	_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	return Outcome{
		Result:     domain.NewCheckResult(start, success),
		StatusCode: resp.StatusCode,
		LatencyMS:  float64(time.Since(began).Microseconds()) / 1000,
		Reason:     resp.Status,
	}
}

var _ Prober = (*HTTPChecker)(nil)
