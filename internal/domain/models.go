package domain

import "time"

// HistoryCap is how many check results the widget keeps.
const HistoryCap = 48

// CheckResult is one probe outcome. The JSON names match the persisted
// format: {"t": <epoch ms>, "ok": <bool>}.
type CheckResult struct {
	Timestamp int64 `json:"t"`
	Success   bool  `json:"ok"`
}

// NewCheckResult stamps a result with the given wall-clock time.
func NewCheckResult(at time.Time, ok bool) CheckResult {
	return CheckResult{Timestamp: at.UnixMilli(), Success: ok}
}

// Time returns the timestamp as a time.Time in UTC.
func (c CheckResult) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// History is ordered oldest first.
type History []CheckResult

// Last returns the most recent result, or nil when the history is empty.
func (h History) Last() *CheckResult {
	if len(h) == 0 {
		return nil
	}
	r := h[len(h)-1]
	return &r
}
