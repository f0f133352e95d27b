package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestHTTPChecker_StatusOK(t *testing.T) {
	var gotMethod, gotCache string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCache = r.Header.Get("Cache-Control")
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	chk.Now = fixedClock(1000)
	out := chk.Probe(context.Background(), s.URL)
	if !out.Result.Success {
		t.Fatalf("want success, got %+v", out)
	}
	if out.Result.Timestamp != 1000 {
		t.Fatalf("want timestamp 1000, got %d", out.Result.Timestamp)
	}
	if out.StatusCode != 200 || !strings.HasPrefix(out.Reason, "200") {
		t.Fatalf("unexpected status/reason: %d %q", out.StatusCode, out.Reason)
	}
	if gotMethod != http.MethodGet {
		t.Fatalf("want GET, got %s", gotMethod)
	}
	if !strings.Contains(gotCache, "no-store") {
		t.Fatalf("want caching disabled, got Cache-Control=%q", gotCache)
	}
	if out.LatencyMS < 0 {
		t.Fatalf("latency should be >= 0, got %f", out.LatencyMS)
	}
}

func TestHTTPChecker_Status503(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer s.Close()

	chk := NewHTTPChecker(2 * time.Second)
	out := chk.Probe(context.Background(), s.URL)
	if out.Result.Success {
		t.Fatalf("want failure, got %+v", out)
	}
	if out.StatusCode != 503 {
		t.Fatalf("want status 503, got %d", out.StatusCode)
	}
	if out.TransportError() {
		t.Fatalf("a 503 is not a transport error")
	}
}

func TestHTTPChecker_NotModifiedIsDown(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer s.Close()

	out := NewHTTPChecker(2*time.Second).Probe(context.Background(), s.URL)
	if out.Result.Success {
		t.Fatalf("304 must not count as success, got %+v", out)
	}
	if out.StatusCode != http.StatusNotModified {
		t.Fatalf("want status 304, got %d", out.StatusCode)
	}
}

func TestHTTPChecker_FollowsRedirectToHealthyTarget(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusFound)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s := httptest.NewServer(mux)
	defer s.Close()

	out := NewHTTPChecker(2*time.Second).Probe(context.Background(), s.URL+"/old")
	if !out.Result.Success || out.StatusCode != http.StatusOK {
		t.Fatalf("302 -> 200 should be up, got %+v", out)
	}
}

func TestHTTPChecker_RedirectToFailingTargetIsDown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusFound)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	s := httptest.NewServer(mux)
	defer s.Close()

	out := NewHTTPChecker(2*time.Second).Probe(context.Background(), s.URL+"/old")
	if out.Result.Success || out.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("302 -> 503 should be down with the final status, got %+v", out)
	}
}

func TestHTTPChecker_ConnectionRefused(t *testing.T) {
	// grab a free port, then close it so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	chk := NewHTTPChecker(2 * time.Second)
	chk.Now = fixedClock(2000)
	out := chk.Probe(context.Background(), "http://"+addr+"/health")
	if out.Result.Success || out.Result.Timestamp != 2000 {
		t.Fatalf("want failed result stamped 2000, got %+v", out.Result)
	}
	if !out.TransportError() || out.Reason == "" {
		t.Fatalf("want transport error with reason, got %+v", out)
	}
}

func TestHTTPChecker_TimeoutSetsStatusZero(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(50 * time.Millisecond)
	out := chk.Probe(context.Background(), s.URL)
	if out.Result.Success {
		t.Fatalf("want failure due to timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on transport error, got %d", out.StatusCode)
	}
}

func TestHTTPChecker_BadURL(t *testing.T) {
	out := NewHTTPChecker(time.Second).Probe(context.Background(), "http://bad host\x7f")
	if out.Result.Success || out.Reason == "" {
		t.Fatalf("want failed outcome with reason, got %+v", out)
	}
}
