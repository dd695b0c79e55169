package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/vgjs-go/jobsystem/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current scheduler stats snapshots. *core.Scheduler
// satisfies it via Stats().
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports a scheduler's Stats() snapshot into
// Prometheus gauges, adapted from the teacher's SnapshotPoller. The original
// polled one gauge set per named runner; this scheduler has no named
// runners, only a fixed worker pool and one shared queue, so a poller polls
// one or more named Schedulers instead.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	sharedDepth   *prom.GaugeVec
	localDepth    *prom.GaugeVec
	poolWorkers   *prom.GaugeVec
	poolTerminating *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	sharedDepth := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsystem",
		Name:      "pool_shared_queue_depth",
		Help:      "Shared queue depth per scheduler.",
	}, []string{"pool"})
	localDepth := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsystem",
		Name:      "pool_local_queue_depth",
		Help:      "Local queue depth per scheduler worker.",
	}, []string{"pool", "worker"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsystem",
		Name:      "pool_workers",
		Help:      "Worker count per scheduler.",
	}, []string{"pool"})
	poolTerminating := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsystem",
		Name:      "pool_terminating",
		Help:      "Scheduler terminating state (1=terminating, 0=running).",
	}, []string{"pool"})

	var err error
	if sharedDepth, err = registerCollector(reg, sharedDepth); err != nil {
		return nil, err
	}
	if localDepth, err = registerCollector(reg, localDepth); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolTerminating, err = registerCollector(reg, poolTerminating); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:        interval,
		pools:           make(map[string]PoolSnapshotProvider),
		sharedDepth:     sharedDepth,
		localDepth:      localDepth,
		poolWorkers:     poolWorkers,
		poolTerminating: poolTerminating,
	}, nil
}

// AddPool adds or replaces a scheduler snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func normalizeLabel(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.sharedDepth.WithLabelValues(name).Set(float64(stats.SharedDepth))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		for i, depth := range stats.LocalDepths {
			p.localDepth.WithLabelValues(name, workerLabel(i)).Set(float64(depth))
		}
		if stats.Terminating {
			p.poolTerminating.WithLabelValues(name).Set(1)
		} else {
			p.poolTerminating.WithLabelValues(name).Set(0)
		}
	}
}
