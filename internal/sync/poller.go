package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rosamendez/emberglow-backend/internal/catalog"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
	"github.com/rosamendez/emberglow-backend/pkg/metrics"
)

const target = "catalog"

// Merger reconciles the local catalog with the remote snapshot.
type Merger interface {
	FetchRemoteAndMerge(ctx context.Context) (bool, error)
}

// Versioner serves the remote change-detection markers.
type Versioner interface {
	VersionMarkers(ctx context.Context) (*catalog.VersionMarkers, error)
}

// Refresher pulls remote page content after a content marker change.
type Refresher interface {
	RefreshFromRemote(ctx context.Context) error
}

// Options tunes the polling cadence.
type Options struct {
	// BaseInterval is the cadence restored after every successful cycle.
	BaseInterval time.Duration
	// MaxBackoff caps the multiplicative backoff applied on failures.
	MaxBackoff time.Duration
	// Debounce collapses rapid repeated triggers into one sync execution.
	Debounce time.Duration
}

// Poller periodically compares remote version markers against the last-seen
// values and triggers a debounced merge when they differ. The interval resets
// to the base on success and backs off multiplicatively on failure.
type Poller struct {
	versions Versioner
	merger   Merger
	content  Refresher
	metrics  *metrics.SyncMetrics
	logg     *logger.Logger

	base     time.Duration
	max      time.Duration
	debounce time.Duration

	mu          sync.Mutex
	interval    time.Duration
	lastMarkers *catalog.VersionMarkers
	running     bool

	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewPoller wires the poller. The content refresher and metrics are optional.
func NewPoller(versions Versioner, merger Merger, content Refresher, syncMetrics *metrics.SyncMetrics, logg *logger.Logger, opts Options) (*Poller, error) {
	if versions == nil {
		return nil, fmt.Errorf("version source required")
	}
	if merger == nil {
		return nil, fmt.Errorf("merger required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.BaseInterval <= 0 {
		opts.BaseInterval = 30 * time.Second
	}
	if opts.MaxBackoff < opts.BaseInterval {
		opts.MaxBackoff = 8 * time.Minute
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}

	return &Poller{
		versions:  versions,
		merger:    merger,
		content:   content,
		metrics:   syncMetrics,
		logg:      logg,
		base:      opts.BaseInterval,
		max:       opts.MaxBackoff,
		debounce:  opts.Debounce,
		interval:  opts.BaseInterval,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start launches the polling loop. It returns immediately; Stop or context
// cancellation ends the loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already started")
	}
	p.running = true
	p.mu.Unlock()

	go p.run(ctx)
	return nil
}

// Stop ends the polling loop and waits for it to drain.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	<-p.doneCh
}

// Trigger requests a sync cycle out of band (e.g. after an admin edit).
// Triggers arriving while one is pending collapse into a single execution.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Interval reports the current polling interval, mainly for inspection.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.doneCh)

	timer := time.NewTimer(p.Interval())
	defer timer.Stop()

	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-timer.C:
			p.checkMarkers(ctx)
			timer.Reset(p.Interval())
		case <-p.triggerCh:
			if debounceC == nil {
				debounceC = time.After(p.debounce)
			}
		case <-debounceC:
			debounceC = nil
			p.syncOnce(ctx)
		}
	}
}

// checkMarkers asks the remote for version markers and schedules a sync when
// any marker moved. Marker values are opaque; only inequality matters.
func (p *Poller) checkMarkers(ctx context.Context) {
	markers, err := p.versions.VersionMarkers(ctx)
	if err != nil {
		p.onFailure(ctx, err)
		return
	}

	p.mu.Lock()
	changed := p.lastMarkers == nil || *p.lastMarkers != *markers
	p.lastMarkers = markers
	p.interval = p.base
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.SetInterval(target, p.base)
	}
	if changed {
		p.Trigger()
	}
}

// syncOnce runs one merge cycle. A failure backs the poll interval off; the
// local snapshot stays authoritative either way.
func (p *Poller) syncOnce(ctx context.Context) {
	start := time.Now()
	if _, err := p.merger.FetchRemoteAndMerge(ctx); err != nil {
		p.onFailure(ctx, err)
		return
	}
	if p.content != nil {
		if err := p.content.RefreshFromRemote(ctx); err != nil {
			p.logg.Warn(ctx, "content refresh failed, retrying next cycle")
		}
	}

	p.mu.Lock()
	p.interval = p.base
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.ObserveDuration(target, time.Since(start))
		p.metrics.IncSuccess(target)
		p.metrics.SetInterval(target, p.base)
	}
	p.logg.Info(ctx, "catalog sync cycle completed")
}

func (p *Poller) onFailure(ctx context.Context, err error) {
	p.mu.Lock()
	next := p.interval * 2
	if next > p.max {
		next = p.max
	}
	if next < p.base {
		next = p.base
	}
	p.interval = next
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.IncFailure(target)
		p.metrics.SetInterval(target, next)
	}
	p.logg.Error(p.logg.WithField(ctx, "next_interval", next.String()), "catalog sync failed, backing off", err)
}
