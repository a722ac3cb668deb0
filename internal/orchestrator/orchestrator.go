package orchestrator

import (
	"context"
	"errors"
	"time"

	"coinboard/internal/domain"
	"coinboard/internal/registry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Cache is the category-aware store consulted before dispatch and populated
// after success.
type Cache interface {
	Get(ctx context.Context, category domain.Category, params domain.Params) (any, bool)
	Put(ctx context.Context, category domain.Category, params domain.Params, payload any)
}

// Breaker gates call attempts per resource and is informed of every outcome.
type Breaker interface {
	Allow(id string) bool
	RecordSuccess(id string)
	RecordFailure(id string)
}

// Health receives call outcomes as bookkeeping; it never blocks the request
// path on anything but a short in-memory update.
type Health interface {
	Observe(id string, ok bool, latency time.Duration)
}

// Catalog supplies the priority-ordered candidate list and the adapter bound
// to each resource id.
type Catalog interface {
	Candidates(category domain.Category) ([]domain.ResourceDescriptor, error)
	Adapter(id string) (registry.Adapter, bool)
}

// Metrics counts attempts, outcomes, and cache traffic for diagnostics.
type Metrics interface {
	RecordAttempt(resource string)
	RecordSuccess(resource string)
	RecordFailure(resource, kind string)
	RecordCacheHit(category string)
	RecordCacheMiss(category string)
	RecordFetchLatency(category string, seconds float64)
}

// Engine is the single entry point for every logical data request: cache →
// priority-ordered candidates → breaker filter → sequential attempts with
// per-resource timeout budgets → normalization → cache population. The
// caller always gets fresh data, cached data, or an attributed failure.
type Engine struct {
	tracer   trace.Tracer
	log      zerolog.Logger
	catalog  Catalog
	breaker  Breaker
	health   Health
	cache    Cache
	metrics  Metrics
	balancer *roundRobin
	now      func() time.Time
}

// New wires an Engine. All collaborators are required.
func New(tracer trace.Tracer, log zerolog.Logger, catalog Catalog, brk Breaker, health Health, cache Cache, metrics Metrics) *Engine {
	return &Engine{
		tracer:   tracer,
		log:      log,
		catalog:  catalog,
		breaker:  brk,
		health:   health,
		cache:    cache,
		metrics:  metrics,
		balancer: newRoundRobin(defaultRotationK),
		now:      time.Now,
	}
}

// SetRotationSize adjusts how many top candidates share RPC traffic. Call
// before serving requests.
func (e *Engine) SetRotationSize(k int) {
	e.balancer = newRoundRobin(k)
}

// Fetch resolves one logical request. Resources are attempted strictly in
// candidate order; the first success short-circuits the rest. Per-resource
// failures are absorbed and reported only through the attempted list.
func (e *Engine) Fetch(ctx context.Context, category domain.Category, params domain.Params) domain.FetchResult {
	ctx, span := e.tracer.Start(ctx, "orchestrator.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("category", string(category)))

	start := e.now()

	if payload, ok := e.cache.Get(ctx, category, params); ok {
		e.metrics.RecordCacheHit(string(category))
		span.SetAttributes(attribute.String("source", domain.SourceCache))
		return domain.FetchResult{Data: payload, SourceID: domain.SourceCache, ServedAt: e.now()}
	}
	e.metrics.RecordCacheMiss(string(category))

	candidates, err := e.catalog.Candidates(category)
	if err != nil {
		return domain.FetchResult{Err: err, ServedAt: e.now()}
	}
	// A chain-scoped request must never be served by a resource pinned to a
	// different chain, and a wrong-chain payload must never land in the cache.
	candidates = filterByChain(candidates, params["chain"])
	if category == domain.CategoryRPCNode {
		candidates = e.balancer.order(category, candidates)
	}

	attempted := make([]string, 0, len(candidates))
	for _, res := range candidates {
		// Honor the caller's overall budget: skip candidates whose timeout
		// budget cannot fit in the remaining time, before consuming a
		// half-open trial slot.
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < res.Timeout {
			e.log.Debug().Str("resource", res.ID).Str("category", string(category)).
				Msg("skipping candidate, timeout budget exceeds caller deadline")
			continue
		}
		// Resolve the adapter before consulting the breaker: a candidate that
		// cannot run must not consume a half-open trial slot.
		adapter, ok := e.catalog.Adapter(res.ID)
		if !ok {
			e.log.Error().Str("resource", res.ID).Msg("descriptor registered without adapter")
			continue
		}
		if !e.breaker.Allow(res.ID) {
			continue
		}

		attempted = append(attempted, res.ID)
		e.metrics.RecordAttempt(res.ID)

		payload, elapsed, err := e.attempt(ctx, adapter, res, params)
		if err != nil {
			kind := classifyFailure(err)
			e.breaker.RecordFailure(res.ID)
			e.health.Observe(res.ID, false, elapsed)
			e.metrics.RecordFailure(res.ID, string(kind))
			e.log.Warn().Err(err).
				Str("resource", res.ID).
				Str("category", string(category)).
				Str("kind", string(kind)).
				Dur("elapsed", elapsed).
				Msg("provider attempt failed, falling back")
			continue
		}

		e.breaker.RecordSuccess(res.ID)
		e.health.Observe(res.ID, true, elapsed)
		e.metrics.RecordSuccess(res.ID)
		e.cache.Put(ctx, category, params, payload)
		e.metrics.RecordFetchLatency(string(category), e.now().Sub(start).Seconds())
		span.SetAttributes(attribute.String("source", res.ID))
		return domain.FetchResult{
			Data:      payload,
			SourceID:  res.ID,
			Attempted: attempted,
			ServedAt:  e.now(),
		}
	}

	exhausted := &domain.ExhaustedError{Category: category, Attempted: attempted}
	e.metrics.RecordFetchLatency(string(category), e.now().Sub(start).Seconds())
	e.log.Error().Str("category", string(category)).Strs("attempted", attempted).
		Msg("all providers exhausted")
	return domain.FetchResult{Err: exhausted, Attempted: attempted, ServedAt: e.now()}
}

// attempt performs one outbound call bounded by the resource's timeout
// budget. The budget caps wall-clock wait for this resource only; retries
// happen across resources, never against the same one.
func (e *Engine) attempt(ctx context.Context, adapter registry.Adapter, res domain.ResourceDescriptor, params domain.Params) (any, time.Duration, error) {
	callCtx, cancel := context.WithTimeout(ctx, res.Timeout)
	defer cancel()

	_, span := e.tracer.Start(callCtx, "orchestrator.call")
	span.SetAttributes(attribute.String("resource", res.ID))
	defer span.End()

	start := e.now()
	payload, err := adapter.Call(callCtx, params)
	return payload, e.now().Sub(start), err
}

// classifyFailure maps an adapter error to the breaker/metrics taxonomy.
// Adapters may pre-classify via domain.ResourceError; otherwise context
// expiry reads as a timeout and everything else as a transport fault.
func classifyFailure(err error) domain.FailKind {
	var resErr *domain.ResourceError
	if errors.As(err, &resErr) {
		return resErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.FailTimeout
	}
	return domain.FailTransport
}

func filterByChain(candidates []domain.ResourceDescriptor, chain string) []domain.ResourceDescriptor {
	if chain == "" {
		return candidates
	}
	out := candidates[:0:0]
	for _, c := range candidates {
		if c.Chain == "" || c.Chain == chain {
			out = append(out, c)
		}
	}
	return out
}
