package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hamed0406/statuswidget/internal/probe"
)

// Collector exports probe and persistence telemetry to Prometheus.
type Collector struct {
	probes     *prometheus.CounterVec
	latency    prometheus.Histogram
	saves      *prometheus.CounterVec
	historyLen prometheus.Gauge
	up         prometheus.Gauge
}

// New registers the widget collectors on reg (the default registerer when nil).
// Registering twice reuses the existing collectors.
func New(namespace string, reg prometheus.Registerer) (*Collector, error) {
	if namespace == "" {
		namespace = "statuswidget"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Completed health probes by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Wall time of health probes.",
			Buckets:   prometheus.DefBuckets,
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_saves_total",
			Help:      "History persistence attempts by result.",
		}, []string{"result"}),
		historyLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Entries currently held in the check history.",
		}),
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "endpoint_up",
			Help:      "1 if the most recent probe succeeded, 0 otherwise.",
		}),
	}

	if err := register(reg, &c.probes); err != nil {
		return nil, err
	}
	if err := register(reg, &c.latency); err != nil {
		return nil, err
	}
	if err := register(reg, &c.saves); err != nil {
		return nil, err
	}
	if err := register(reg, &c.historyLen); err != nil {
		return nil, err
	}
	if err := register(reg, &c.up); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, col *T) error {
	if err := reg.Register(*col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				*col = existing
				return nil
			}
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}

func (c *Collector) ObserveProbe(o probe.Outcome) {
	outcome := "down"
	if o.Result.Success {
		outcome = "up"
		c.up.Set(1)
	} else {
		c.up.Set(0)
	}
	c.probes.WithLabelValues(outcome).Inc()
	c.latency.Observe(o.LatencyMS / 1000)
}

func (c *Collector) ObserveSave(err error) {
	if err != nil {
		c.saves.WithLabelValues("error").Inc()
		return
	}
	c.saves.WithLabelValues("ok").Inc()
}

func (c *Collector) ObserveHistory(n int) {
	c.historyLen.Set(float64(n))
}
