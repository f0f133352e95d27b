package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/statuswidget/internal/domain"
	apimw "github.com/hamed0406/statuswidget/internal/httpapi/middleware"
	"github.com/hamed0406/statuswidget/internal/scheduler"
	"github.com/hamed0406/statuswidget/internal/view"
)

// SnapshotSource is satisfied by *scheduler.Poller.
type SnapshotSource interface {
	Snapshot() scheduler.Snapshot
}

type Server struct {
	Logger  *zap.Logger
	Source  SnapshotSource
	Metrics prometheus.Gatherer
}

func NewServer(l *zap.Logger, src SnapshotSource, metrics prometheus.Gatherer) *Server {
	if metrics == nil {
		metrics = prometheus.DefaultGatherer
	}
	return &Server{Logger: l, Source: src, Metrics: metrics}
}

func (s *Server) Router(rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.Metrics, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(rpm, burst))
		r.Get("/api/status", s.handleStatus)
		r.Get("/widget.svg", s.handleSVG)
	})

	return r
}

type statusResponse struct {
	Status      view.Status    `json:"status"`
	Color       string         `json:"color"`
	Badge       string         `json:"badge"`
	Endpoint    string         `json:"endpoint"`
	LastChecked *time.Time     `json:"last_checked"`
	History     domain.History `json:"history"`
	Chart       view.Chart     `json:"chart"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Source.Snapshot()
	st := view.StatusOf(snap.History)

	resp := statusResponse{
		Status:   st,
		Color:    st.Color(),
		Badge:    st.Badge(),
		Endpoint: snap.Endpoint,
		History:  snap.History,
		Chart:    view.Bars(snap.History),
	}
	if resp.History == nil {
		resp.History = domain.History{}
	}
	if !snap.LastChecked.IsZero() {
		lc := snap.LastChecked.UTC()
		resp.LastChecked = &lc
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Warn("status_encode_failed", zap.Error(err))
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	snap := s.Source.Snapshot()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(view.RenderSVG(view.Bars(snap.History)))
}
