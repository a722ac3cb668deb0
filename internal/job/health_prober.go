package job

import (
	"context"
	"time"

	"coinboard/internal/domain"
	"coinboard/internal/registry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Catalog supplies the resources to probe and the adapter bound to each.
type Catalog interface {
	All() []domain.ResourceDescriptor
	Adapter(id string) (registry.Adapter, bool)
}

// HealthSink records probe outcomes and reports when a resource was last
// exercised by real traffic.
type HealthSink interface {
	Observe(id string, ok bool, latency time.Duration)
	LastObserved(id string) time.Time
}

// BreakerSink gates probes the same way real calls are gated, so a probe can
// serve as the half-open trial for a recovering resource.
type BreakerSink interface {
	Allow(id string) bool
	RecordSuccess(id string)
	RecordFailure(id string)
}

// HealthProber keeps health scores meaningful for resources the request path
// rarely touches. Resources with recent traffic are skipped; their scores are
// already fresh.
type HealthProber struct {
	tracer    trace.Tracer
	log       zerolog.Logger
	catalog   Catalog
	health    HealthSink
	breaker   BreakerSink
	interval  time.Duration
	idleAfter time.Duration
	now       func() time.Time
}

func NewHealthProber(tracer trace.Tracer, log zerolog.Logger, catalog Catalog, health HealthSink, breaker BreakerSink, interval, idleAfter time.Duration) *HealthProber {
	return &HealthProber{
		tracer:    tracer,
		log:       log,
		catalog:   catalog,
		health:    health,
		breaker:   breaker,
		interval:  interval,
		idleAfter: idleAfter,
		now:       time.Now,
	}
}

// Start blocks until ctx is cancelled, probing idle resources every interval.
func (p *HealthProber) Start(ctx context.Context) {
	p.log.Info().Dur("interval", p.interval).Msg("health prober starting")

	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("health prober stopped")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *HealthProber) sweep(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "prober.sweep")
	defer span.End()

	for _, res := range p.catalog.All() {
		if ctx.Err() != nil {
			return
		}
		if p.now().Sub(p.health.LastObserved(res.ID)) < p.idleAfter {
			continue
		}
		// Resolve the adapter first so an unrunnable resource never consumes
		// a half-open trial slot.
		adapter, ok := p.catalog.Adapter(res.ID)
		if !ok {
			continue
		}
		if !p.breaker.Allow(res.ID) {
			continue
		}
		p.probe(ctx, res, adapter)
	}
}

func (p *HealthProber) probe(ctx context.Context, res domain.ResourceDescriptor, adapter registry.Adapter) {
	callCtx, cancel := context.WithTimeout(ctx, res.Timeout)
	defer cancel()

	start := p.now()
	_, err := adapter.Call(callCtx, probeParams(res))
	elapsed := p.now().Sub(start)

	if err != nil {
		p.breaker.RecordFailure(res.ID)
		p.health.Observe(res.ID, false, elapsed)
		p.log.Debug().Err(err).Str("resource", res.ID).Dur("elapsed", elapsed).
			Msg("probe failed")
		return
	}
	p.breaker.RecordSuccess(res.ID)
	p.health.Observe(res.ID, true, elapsed)
}

// probeParams keeps probes cheap: a single symbol for market categories, the
// resource's own chain elsewhere.
func probeParams(res domain.ResourceDescriptor) domain.Params {
	switch res.Category {
	case domain.CategoryMarketData:
		return domain.Params{"symbols": "BTC"}
	case domain.CategoryOHLCV:
		return domain.Params{"symbol": "BTC", "interval": "1h"}
	case domain.CategoryNews:
		return domain.Params{"limit": "1"}
	default:
		if res.Chain != "" {
			return domain.Params{"chain": res.Chain}
		}
		return domain.Params{}
	}
}
