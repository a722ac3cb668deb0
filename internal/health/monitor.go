package health

import (
	"math"
	"sync"
	"time"
)

const (
	// NeutralScore is assigned to resources with no observations yet, so a
	// cold start does not bias candidate ordering.
	NeutralScore = 50.0

	defaultWindow    = 50
	defaultAlpha     = 0.3
	recencyHalfLife  = 5 * time.Minute
	latencyCeilingMs = 10_000.0
)

// Record is a point-in-time view of one resource's health, safe to serialize.
type Record struct {
	SuccessRate    float64   `json:"success_rate"`
	AvgResponseMs  float64   `json:"avg_response_ms"`
	LastSuccessAt  time.Time `json:"last_success_at"`
	CompositeScore float64   `json:"composite_score"`
	Observations   int       `json:"observations"`
}

type resourceHealth struct {
	mu            sync.Mutex
	window        []bool // ring buffer of recent outcomes
	next          int
	filled        bool
	avgMs         float64
	hasLatency    bool
	lastSuccessAt time.Time
}

// Monitor maintains per-resource health records from live call outcomes and
// background probes. Updates are in-memory bookkeeping only; nothing here
// performs I/O or blocks on anything but a short per-resource mutex.
type Monitor struct {
	mu         sync.RWMutex
	resources  map[string]*resourceHealth
	windowSize int
	alpha      float64
	now        func() time.Time
}

// NewMonitor creates a Monitor with the given sliding-window size (defaults
// to the last 50 observations).
func NewMonitor(windowSize int) *Monitor {
	if windowSize <= 0 {
		windowSize = defaultWindow
	}
	return &Monitor{
		resources:  make(map[string]*resourceHealth),
		windowSize: windowSize,
		alpha:      defaultAlpha,
		now:        time.Now,
	}
}

func (m *Monitor) get(id string) *resourceHealth {
	m.mu.RLock()
	h, ok := m.resources[id]
	m.mu.RUnlock()
	if ok {
		return h
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok = m.resources[id]; ok {
		return h
	}
	h = &resourceHealth{window: make([]bool, m.windowSize)}
	m.resources[id] = h
	return h
}

// Observe records one call outcome. The oldest observation drops out of the
// window once it is full; latency updates via exponential moving average.
func (m *Monitor) Observe(id string, ok bool, latency time.Duration) {
	h := m.get(id)
	h.mu.Lock()
	defer h.mu.Unlock()

	h.window[h.next] = ok
	h.next = (h.next + 1) % len(h.window)
	if h.next == 0 {
		h.filled = true
	}

	ms := float64(latency) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	if !h.hasLatency {
		h.avgMs = ms
		h.hasLatency = true
	} else {
		h.avgMs = m.alpha*ms + (1-m.alpha)*h.avgMs
	}

	if ok {
		h.lastSuccessAt = m.now()
	}
}

// Score returns the composite health score (0-100) for a resource. Resources
// never observed score neutral.
func (m *Monitor) Score(id string) float64 {
	m.mu.RLock()
	h, ok := m.resources[id]
	m.mu.RUnlock()
	if !ok {
		return NeutralScore
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return m.composite(h)
}

// Snapshot returns the full health record for every tracked resource, for
// the diagnostics surface.
func (m *Monitor) Snapshot() map[string]Record {
	m.mu.RLock()
	ids := make([]string, 0, len(m.resources))
	for id := range m.resources {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	out := make(map[string]Record, len(ids))
	for _, id := range ids {
		h := m.get(id)
		h.mu.Lock()
		n := m.observationCount(h)
		out[id] = Record{
			SuccessRate:    m.successRate(h),
			AvgResponseMs:  h.avgMs,
			LastSuccessAt:  h.lastSuccessAt,
			CompositeScore: m.composite(h),
			Observations:   n,
		}
		h.mu.Unlock()
	}
	return out
}

// LastObserved returns the time of the resource's most recent successful
// observation, or zero if none. Used by the background prober to find idle
// resources.
func (m *Monitor) LastObserved(id string) time.Time {
	m.mu.RLock()
	h, ok := m.resources[id]
	m.mu.RUnlock()
	if !ok {
		return time.Time{}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastSuccessAt
}

func (m *Monitor) observationCount(h *resourceHealth) int {
	if h.filled {
		return len(h.window)
	}
	return h.next
}

func (m *Monitor) successRate(h *resourceHealth) float64 {
	n := m.observationCount(h)
	if n == 0 {
		return 0
	}
	succ := 0
	for i := 0; i < n; i++ {
		if h.window[i] {
			succ++
		}
	}
	return float64(succ) / float64(n)
}

// composite blends success rate (40%), latency (30%), and recency (30%) into
// a single 0-100 score. Callers must hold h.mu.
func (m *Monitor) composite(h *resourceHealth) float64 {
	if m.observationCount(h) == 0 {
		return NeutralScore
	}

	successScore := m.successRate(h) * 100

	latencyScore := 100.0
	if h.hasLatency {
		latencyScore = 100 * (1 - math.Min(h.avgMs/latencyCeilingMs, 1))
	}

	recencyScore := 0.0
	if !h.lastSuccessAt.IsZero() {
		age := m.now().Sub(h.lastSuccessAt)
		if age < 0 {
			age = 0
		}
		recencyScore = 100 * math.Exp2(-float64(age)/float64(recencyHalfLife))
	}

	return 0.4*successScore + 0.3*latencyScore + 0.3*recencyScore
}
