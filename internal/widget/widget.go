package widget

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/hamed0406/statuswidget/internal/config"
	"github.com/hamed0406/statuswidget/internal/history"
	"github.com/hamed0406/statuswidget/internal/httpapi"
	"github.com/hamed0406/statuswidget/internal/metrics"
	"github.com/hamed0406/statuswidget/internal/notify"
	"github.com/hamed0406/statuswidget/internal/probe"
	"github.com/hamed0406/statuswidget/internal/repo"
	"github.com/hamed0406/statuswidget/internal/scheduler"
)

// Widget is one mounted status widget: a poller bound to a history store,
// plus everything that observes it.
type Widget struct {
	Poller      *scheduler.Poller
	Server      *httpapi.Server
	Transitions *notify.Transitions
}

// Options lets callers and tests replace the prober and metrics registry.
type Options struct {
	Prober   probe.Prober
	Registry *prometheus.Registry
}

func New(cfg config.Config, log *zap.Logger, storage repo.Storage, opts Options) (*Widget, error) {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
	}
	col, err := metrics.New("statuswidget", reg)
	if err != nil {
		return nil, err
	}

	prober := opts.Prober
	if prober == nil {
		prober = probe.NewHTTPChecker(cfg.ProbeTimeout)
	}

	store := history.NewStore(log, storage, cfg.HistoryKey)
	store.Observer = col

	p := scheduler.NewPoller(log, prober, store, cfg.HealthURL, cfg.PollInterval, cfg.ProbeTimeout)
	p.Observer = col
	p.Diagnose = opts.Prober == nil

	w := &Widget{
		Poller: p,
		Server: httpapi.NewServer(log, p, reg),
	}
	// status changes always go to the log; Slack only when configured
	sinks := notify.Multi{notify.Log{Logger: log}}
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		sinks = append(sinks, slack)
	}
	w.Transitions = notify.NewTransitions(log, sinks, true)
	p.OnLoad = w.Transitions.Prime
	p.Subscribe(w.Transitions.Listen)
	return w, nil
}
