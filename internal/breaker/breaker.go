package breaker

import (
	"sync"
	"time"
)

// State captures circuit breaker states for one resource.
type State int

const (
	// StateClosed indicates normal operation; calls are permitted.
	StateClosed State = iota
	// StateOpen indicates the resource is excluded from candidate attempts.
	StateOpen
	// StateHalfOpen indicates exactly one trial call is permitted.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Config controls the thresholds for state transitions.
type Config struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
}

// DefaultConfig returns the stock thresholds: 5 consecutive failures trip
// the circuit, 60s before a trial call is allowed.
func DefaultConfig() Config {
	return Config{FailureThreshold: 5, RecoveryTimeout: 60 * time.Second}
}

// TransitionFunc is invoked on every state change, outside the circuit lock.
type TransitionFunc func(id string, from, to State)

// CircuitInfo is a point-in-time snapshot of one circuit, safe to serialize.
type CircuitInfo struct {
	Status              string     `json:"status"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
}

type circuit struct {
	mu            sync.Mutex
	state         State
	failures      int
	lastFailureAt time.Time
	trialInFlight bool
}

// Breaker tracks one circuit per resource id. Circuits are independently
// locked so concurrent requests for different resources never contend.
type Breaker struct {
	mu           sync.RWMutex
	circuits     map[string]*circuit
	cfg          Config
	onTransition TransitionFunc
	now          func() time.Time
}

// New creates a Breaker. onTransition may be nil.
func New(cfg Config, onTransition TransitionFunc) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 60 * time.Second
	}
	return &Breaker{
		circuits:     make(map[string]*circuit),
		cfg:          cfg,
		onTransition: onTransition,
		now:          time.Now,
	}
}

func (b *Breaker) get(id string) *circuit {
	b.mu.RLock()
	c, ok := b.circuits[id]
	b.mu.RUnlock()
	if ok {
		return c
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok = b.circuits[id]; ok {
		return c
	}
	c = &circuit{state: StateClosed}
	b.circuits[id] = c
	return c
}

// Allow reports whether a call to the resource is permitted. An OPEN circuit
// whose recovery timeout has elapsed transitions to HALF_OPEN before
// answering; HALF_OPEN admits exactly one trial call at a time.
func (b *Breaker) Allow(id string) bool {
	c := b.get(id)
	c.mu.Lock()

	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return true
	case StateOpen:
		if b.now().Sub(c.lastFailureAt) >= b.cfg.RecoveryTimeout {
			c.state = StateHalfOpen
			c.trialInFlight = true
			c.mu.Unlock()
			b.notify(id, StateOpen, StateHalfOpen)
			return true
		}
		c.mu.Unlock()
		return false
	case StateHalfOpen:
		if c.trialInFlight {
			c.mu.Unlock()
			return false
		}
		c.trialInFlight = true
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()
	return false
}

// RecordSuccess reports a successful call outcome for the resource.
func (b *Breaker) RecordSuccess(id string) {
	c := b.get(id)
	c.mu.Lock()
	from := c.state
	c.failures = 0
	c.trialInFlight = false
	c.state = StateClosed
	c.mu.Unlock()
	if from != StateClosed {
		b.notify(id, from, StateClosed)
	}
}

// RecordFailure reports a failed call outcome for the resource. Reaching the
// failure threshold in CLOSED, or any failure in HALF_OPEN, opens the circuit.
func (b *Breaker) RecordFailure(id string) {
	c := b.get(id)
	c.mu.Lock()
	from := c.state
	c.failures++
	c.lastFailureAt = b.now()
	c.trialInFlight = false

	opened := false
	switch c.state {
	case StateClosed:
		if c.failures >= b.cfg.FailureThreshold {
			c.state = StateOpen
			opened = true
		}
	case StateHalfOpen:
		c.state = StateOpen
		opened = true
	}
	c.mu.Unlock()
	if opened {
		b.notify(id, from, StateOpen)
	}
}

// State returns the current state of the resource's circuit without side
// effects. Unknown ids read as CLOSED.
func (b *Breaker) State(id string) State {
	b.mu.RLock()
	c, ok := b.circuits[id]
	b.mu.RUnlock()
	if !ok {
		return StateClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a point-in-time view of every tracked circuit.
func (b *Breaker) Snapshot() map[string]CircuitInfo {
	b.mu.RLock()
	ids := make([]string, 0, len(b.circuits))
	for id := range b.circuits {
		ids = append(ids, id)
	}
	b.mu.RUnlock()

	out := make(map[string]CircuitInfo, len(ids))
	for _, id := range ids {
		c := b.get(id)
		c.mu.Lock()
		info := CircuitInfo{
			Status:              c.state.String(),
			ConsecutiveFailures: c.failures,
		}
		if !c.lastFailureAt.IsZero() {
			t := c.lastFailureAt
			info.LastFailureAt = &t
		}
		c.mu.Unlock()
		out[id] = info
	}
	return out
}

func (b *Breaker) notify(id string, from, to State) {
	if b.onTransition != nil {
		b.onTransition(id, from, to)
	}
}
