package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswidget/internal/domain"
	"github.com/hamed0406/statuswidget/internal/history"
	"github.com/hamed0406/statuswidget/internal/probe"
)

var (
	ErrAlreadyStarted = errors.New("scheduler: poller already started")
	ErrStopped        = errors.New("scheduler: poller stopped")
)

type state int

const (
	stateIdle state = iota
	stateActive
	stateStopped
)

// Snapshot is what the presentation layer renders.
type Snapshot struct {
	Endpoint    string
	History     domain.History
	LastChecked time.Time // zero until a probe completes in this session
}

// Listener is called after accepted probes, in publication order. A
// publication overtaken by a newer one before delivery is folded into the
// newer snapshot. Listeners may call Snapshot but must not call Stop.
type Listener func(Snapshot)

// ProbeObserver receives every accepted probe outcome (metrics).
type ProbeObserver interface {
	ObserveProbe(o probe.Outcome)
	ObserveHistory(n int)
}

// Poller probes one endpoint immediately on Start and then every Interval.
// Stop is terminal; results that complete afterwards are discarded.
type Poller struct {
	Logger   *zap.Logger
	Prober   probe.Prober
	Store    *history.Store
	Endpoint string
	Interval time.Duration
	Timeout  time.Duration
	Observer ProbeObserver

	// Diagnose runs a DNS classification of the endpoint host after
	// transport failures and logs it. Resolver nil means the OS resolver.
	Diagnose bool
	Resolver probe.DNSResolver

	// OnLoad, if set, receives the history loaded by Start before the
	// first probe fires.
	OnLoad func(domain.History)

	mu          sync.Mutex
	state       state
	cancel      context.CancelFunc
	history     domain.History
	lastChecked time.Time
	issued      uint64
	published   uint64
	listeners   []Listener

	// notifyMu serializes Save and listener delivery; never acquired
	// while mu is held.
	notifyMu sync.Mutex
	notified uint64
	loopDone chan struct{}
	inflight sync.WaitGroup
}

func NewPoller(
	logger *zap.Logger,
	prober probe.Prober,
	store *history.Store,
	endpoint string,
	interval time.Duration,
	timeout time.Duration,
) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Poller{
		Logger:   logger,
		Prober:   prober,
		Store:    store,
		Endpoint: endpoint,
		Interval: interval,
		Timeout:  timeout,
		history:  domain.History{},
	}
}

// Subscribe registers l for future publications.
func (p *Poller) Subscribe(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// Snapshot returns the current state. Safe to call at any time.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Snapshot {
	return Snapshot{Endpoint: p.Endpoint, History: p.history, LastChecked: p.lastChecked}
}

// Start loads the persisted history, fires the first probe and starts the
// ticker. Cancelling ctx has the same effect as Stop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case stateActive:
		p.mu.Unlock()
		return ErrAlreadyStarted
	case stateStopped:
		p.mu.Unlock()
		return ErrStopped
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.state = stateActive
	p.cancel = cancel
	p.loopDone = make(chan struct{})
	p.mu.Unlock()

	h := p.Store.Load(runCtx)
	if p.OnLoad != nil {
		p.OnLoad(h)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateActive {
		// stopped while loading
		close(p.loopDone)
		return ErrStopped
	}
	p.history = h
	if p.Observer != nil {
		p.Observer.ObserveHistory(len(h))
	}
	p.Logger.Info("poller_started",
		zap.String("endpoint", p.Endpoint),
		zap.Duration("interval", p.Interval),
		zap.Int("history_loaded", len(h)),
	)
	go p.loop(runCtx)
	return nil
}

// Run starts the poller and blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	p.Stop()
	p.Wait()
	return nil
}

// Stop cancels the ticker and any in-flight probe. It returns once the
// ticker loop has exited and no listener call is in progress; probes still
// finishing are discarded. Calling Stop more than once is harmless.
func (p *Poller) Stop() {
	p.mu.Lock()
	prev := p.state
	p.state = stateStopped
	cancel, done := p.cancel, p.loopDone
	p.mu.Unlock()

	if cancel == nil {
		return // never started
	}
	cancel()
	<-done

	// a delivery already past its state check holds notifyMu until its
	// listeners return; later ones see the stopped state
	p.notifyMu.Lock()
	p.notifyMu.Unlock()
	if prev == stateActive {
		p.Logger.Info("poller_stopped", zap.String("endpoint", p.Endpoint))
	}
}

// Wait blocks until every probe started by this poller has returned.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.loopDone)

	t := time.NewTicker(p.Interval)
	defer t.Stop()

	// fire on start
	p.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			p.markStopped()
			return
		case <-t.C:
			p.tick(ctx)
		}
	}
}

// markStopped handles the parent context going away without Stop.
func (p *Poller) markStopped() {
	p.mu.Lock()
	prev := p.state
	p.state = stateStopped
	p.mu.Unlock()
	if prev == stateActive {
		p.Logger.Info("poller_stopped", zap.String("endpoint", p.Endpoint))
	}
}

func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	if p.state != stateActive {
		p.mu.Unlock()
		return
	}
	p.issued++
	seq := p.issued
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()

		pctx, cancel := context.WithTimeout(ctx, p.Timeout)
		defer cancel()
		out := p.Prober.Probe(pctx, p.Endpoint)

		if p.Diagnose && out.TransportError() && ctx.Err() == nil {
			dns := probe.CheckDNS(ctx, p.Resolver, p.Endpoint)
			p.Logger.Info("dns_check",
				zap.String("domain", dns.Domain),
				zap.String("class", dns.Class),
				zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
				zap.Strings("nameservers", dns.Nameservers),
				zap.String("cname", dns.CNAME),
				zap.String("resolver_error", dns.ResolverError),
			)
		}
		p.publish(ctx, seq, out)
	}()
}

func (p *Poller) publish(ctx context.Context, seq uint64, out probe.Outcome) {
	p.mu.Lock()
	if p.state != stateActive || ctx.Err() != nil {
		p.mu.Unlock()
		p.Logger.Debug("probe_discarded_after_stop", zap.Uint64("seq", seq))
		return
	}
	if seq < p.published {
		published := p.published
		p.mu.Unlock()
		p.Logger.Warn("probe_discarded_stale",
			zap.Uint64("seq", seq),
			zap.Uint64("published", published),
		)
		return
	}
	p.published = seq
	p.history = history.Append(p.history, out.Result)
	p.lastChecked = out.Result.Time()
	if p.Observer != nil {
		p.Observer.ObserveProbe(out)
		p.Observer.ObserveHistory(len(p.history))
	}
	snap := p.snapshotLocked()
	listeners := append([]Listener(nil), p.listeners...)
	p.mu.Unlock()

	p.Logger.Debug("probe_done",
		zap.Uint64("seq", seq),
		zap.String("endpoint", p.Endpoint),
		zap.Bool("up", out.Result.Success),
		zap.Int("status", out.StatusCode),
		zap.Float64("latency_ms", out.LatencyMS),
		zap.String("reason", out.Reason),
	)

	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	// a newer snapshot, which already contains this result, went out first
	if seq < p.notified {
		return
	}
	if !p.active(ctx) {
		return
	}
	p.notified = seq
	p.Store.Save(ctx, snap.History)
	for _, l := range listeners {
		l(snap)
	}
}

func (p *Poller) active(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateActive && ctx.Err() == nil
}
