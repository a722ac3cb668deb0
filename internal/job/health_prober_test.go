package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coinboard/internal/domain"
	"coinboard/internal/registry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type probeAdapter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (a *probeAdapter) Call(context.Context, domain.Params) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return "ok", a.err
}

func (a *probeAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type fakeCatalog struct {
	resources []domain.ResourceDescriptor
	adapters  map[string]registry.Adapter
}

func (f *fakeCatalog) All() []domain.ResourceDescriptor { return f.resources }

func (f *fakeCatalog) Adapter(id string) (registry.Adapter, bool) {
	a, ok := f.adapters[id]
	return a, ok
}

type fakeHealthSink struct {
	mu       sync.Mutex
	observed map[string]time.Time
	outcomes map[string][]bool
}

func newFakeHealthSink() *fakeHealthSink {
	return &fakeHealthSink{
		observed: make(map[string]time.Time),
		outcomes: make(map[string][]bool),
	}
}

func (f *fakeHealthSink) Observe(id string, ok bool, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[id] = append(f.outcomes[id], ok)
}

func (f *fakeHealthSink) LastObserved(id string) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.observed[id]
}

type fakeBreakerSink struct {
	mu        sync.Mutex
	blocked   map[string]bool
	asked     []string
	successes int
	failures  int
}

func (f *fakeBreakerSink) Allow(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, id)
	return !f.blocked[id]
}

func (f *fakeBreakerSink) RecordSuccess(string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes++
}

func (f *fakeBreakerSink) RecordFailure(string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
}

func testProber(catalog Catalog, health HealthSink, brk BreakerSink) *HealthProber {
	return NewHealthProber(
		trace.NewNoopTracerProvider().Tracer("test"),
		zerolog.Nop(),
		catalog, health, brk,
		50*time.Millisecond, 5*time.Minute,
	)
}

func descriptor(id string) domain.ResourceDescriptor {
	return domain.ResourceDescriptor{
		ID:       id,
		Category: domain.CategoryMarketData,
		Tier:     domain.TierHigh,
		Timeout:  time.Second,
	}
}

func TestProberProbesIdleResources(t *testing.T) {
	t.Parallel()

	adapter := &probeAdapter{}
	catalog := &fakeCatalog{
		resources: []domain.ResourceDescriptor{descriptor("idle")},
		adapters:  map[string]registry.Adapter{"idle": adapter},
	}
	health := newFakeHealthSink()
	brk := &fakeBreakerSink{}

	prober := testProber(catalog, health, brk)
	prober.sweep(context.Background())

	if adapter.callCount() != 1 {
		t.Fatalf("expected 1 probe, got %d", adapter.callCount())
	}
	if brk.successes != 1 {
		t.Fatalf("probe success must feed the breaker, got %d", brk.successes)
	}
	if outcomes := health.outcomes["idle"]; len(outcomes) != 1 || !outcomes[0] {
		t.Fatalf("probe success must feed health: %v", outcomes)
	}
}

func TestProberSkipsRecentlyObservedResources(t *testing.T) {
	t.Parallel()

	adapter := &probeAdapter{}
	catalog := &fakeCatalog{
		resources: []domain.ResourceDescriptor{descriptor("busy")},
		adapters:  map[string]registry.Adapter{"busy": adapter},
	}
	health := newFakeHealthSink()
	health.observed["busy"] = time.Now()
	brk := &fakeBreakerSink{}

	prober := testProber(catalog, health, brk)
	prober.sweep(context.Background())

	if adapter.callCount() != 0 {
		t.Fatalf("recently observed resource must not be probed, got %d calls", adapter.callCount())
	}
}

func TestProberHonorsBreaker(t *testing.T) {
	t.Parallel()

	adapter := &probeAdapter{}
	catalog := &fakeCatalog{
		resources: []domain.ResourceDescriptor{descriptor("open")},
		adapters:  map[string]registry.Adapter{"open": adapter},
	}
	health := newFakeHealthSink()
	brk := &fakeBreakerSink{blocked: map[string]bool{"open": true}}

	prober := testProber(catalog, health, brk)
	prober.sweep(context.Background())

	if adapter.callCount() != 0 {
		t.Fatalf("open circuit must not be probed, got %d calls", adapter.callCount())
	}
}

func TestProberRecordsFailures(t *testing.T) {
	t.Parallel()

	adapter := &probeAdapter{err: errors.New("boom")}
	catalog := &fakeCatalog{
		resources: []domain.ResourceDescriptor{descriptor("flaky")},
		adapters:  map[string]registry.Adapter{"flaky": adapter},
	}
	health := newFakeHealthSink()
	brk := &fakeBreakerSink{}

	prober := testProber(catalog, health, brk)
	prober.sweep(context.Background())

	if brk.failures != 1 {
		t.Fatalf("probe failure must feed the breaker, got %d", brk.failures)
	}
	if outcomes := health.outcomes["flaky"]; len(outcomes) != 1 || outcomes[0] {
		t.Fatalf("probe failure must feed health: %v", outcomes)
	}
}

func TestProberSkipsResourceWithoutAdapterBeforeBreaker(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{
		resources: []domain.ResourceDescriptor{descriptor("orphan")},
		adapters:  map[string]registry.Adapter{},
	}
	brk := &fakeBreakerSink{}

	prober := testProber(catalog, newFakeHealthSink(), brk)
	prober.sweep(context.Background())

	if len(brk.asked) != 0 {
		t.Fatalf("a resource without an adapter must not consume a breaker slot, asked %v", brk.asked)
	}
}

func TestProberStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{adapters: map[string]registry.Adapter{}}
	prober := testProber(catalog, newFakeHealthSink(), &fakeBreakerSink{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		prober.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("prober did not stop on cancel")
	}
}

func TestProbeParamsPerCategory(t *testing.T) {
	t.Parallel()

	if p := probeParams(domain.ResourceDescriptor{Category: domain.CategoryOHLCV}); p["symbol"] != "BTC" {
		t.Fatalf("ohlcv probe needs a symbol: %v", p)
	}
	if p := probeParams(domain.ResourceDescriptor{Category: domain.CategoryRPCNode, Chain: "ethereum"}); p["chain"] != "ethereum" {
		t.Fatalf("rpc probe needs the chain: %v", p)
	}
	if p := probeParams(domain.ResourceDescriptor{Category: domain.CategorySentiment}); len(p) != 0 {
		t.Fatalf("sentiment probe needs no params: %v", p)
	}
}
