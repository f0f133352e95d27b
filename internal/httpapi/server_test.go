package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hamed0406/statuswidget/internal/domain"
	"github.com/hamed0406/statuswidget/internal/scheduler"
)

// ---- test helpers ----

type fakeSource struct {
	snap scheduler.Snapshot
}

func (f *fakeSource) Snapshot() scheduler.Snapshot { return f.snap }

func setupServer(t *testing.T, snap scheduler.Snapshot, rpm int) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter_total", Help: "x"}))
	srv := NewServer(zap.NewNop(), &fakeSource{snap: snap}, reg)
	ts := httptest.NewServer(srv.Router(rpm, 1))
	t.Cleanup(ts.Close)
	return ts
}

type statusBody struct {
	Status      string     `json:"status"`
	Color       string     `json:"color"`
	Badge       string     `json:"badge"`
	Endpoint    string     `json:"endpoint"`
	LastChecked *time.Time `json:"last_checked"`
	History     []struct {
		T  int64 `json:"t"`
		OK bool  `json:"ok"`
	} `json:"history"`
	Chart struct {
		Width  int `json:"width"`
		Height int `json:"height"`
		Bars   []struct {
			X, Y, Width, Height int
			OK                  bool   `json:"ok"`
			Color               string `json:"color"`
		} `json:"bars"`
	} `json:"chart"`
}

func getStatus(t *testing.T, url string) statusBody {
	t.Helper()
	resp, err := http.Get(url + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var body statusBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

// ---- tests ----

func TestStatus_BeforeFirstProbe(t *testing.T) {
	ts := setupServer(t, scheduler.Snapshot{Endpoint: "https://a/health"}, 0)
	body := getStatus(t, ts.URL)

	if body.Status != "checking" || body.Badge != "..." || body.LastChecked != nil {
		t.Fatalf("unexpected initial body: %+v", body)
	}
	if body.History == nil || len(body.History) != 0 || len(body.Chart.Bars) != 0 {
		t.Fatalf("history should be an empty array: %+v", body)
	}
}

func TestStatus_AfterOneSuccess(t *testing.T) {
	snap := scheduler.Snapshot{
		Endpoint:    "https://a/health",
		History:     domain.History{{Timestamp: 1000, Success: true}},
		LastChecked: time.UnixMilli(1000),
	}
	body := getStatus(t, setupServer(t, snap, 0).URL)

	if body.Status != "up" || body.Color != "#22c55e" || body.Badge != "OK" {
		t.Fatalf("unexpected status: %+v", body)
	}
	if len(body.History) != 1 || body.History[0].T != 1000 || !body.History[0].OK {
		t.Fatalf("unexpected history: %+v", body.History)
	}
	if len(body.Chart.Bars) != 1 || body.Chart.Bars[0].Height != body.Chart.Height || !body.Chart.Bars[0].OK {
		t.Fatalf("unexpected chart: %+v", body.Chart)
	}
	if body.LastChecked == nil || body.LastChecked.UnixMilli() != 1000 {
		t.Fatalf("unexpected last_checked: %v", body.LastChecked)
	}
}

func TestWidgetSVG(t *testing.T) {
	snap := scheduler.Snapshot{History: domain.History{{Timestamp: 1, Success: false}, {Timestamp: 2, Success: true}}}
	resp, err := http.Get(setupServer(t, snap, 0).URL + "/widget.svg")
	if err != nil {
		t.Fatalf("GET svg: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("content type %q", ct)
	}
	b, _ := io.ReadAll(resp.Body)
	if strings.Count(string(b), "<rect") != 2 {
		t.Fatalf("want 2 rects: %s", b)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	ts := setupServer(t, scheduler.Snapshot{}, 0)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("healthz: %v %v", resp, err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "test_counter_total") {
		t.Fatalf("metrics output missing registry contents: %s", b)
	}
}

func TestStatus_RateLimited(t *testing.T) {
	ts := setupServer(t, scheduler.Snapshot{}, 1) // 1 rpm, burst 1

	getStatus(t, ts.URL)
	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", resp.StatusCode)
	}

	// healthz is outside the limited group
	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("healthz should not be limited: %v %v", resp, err)
	}
	resp.Body.Close()
}
