package health

import (
	"testing"
	"time"
)

func newTestMonitor(window int) (*Monitor, *time.Time) {
	m := NewMonitor(window)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMonitorColdStartIsNeutral(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(10)
	if got := m.Score("never-seen"); got != NeutralScore {
		t.Fatalf("expected neutral score %v, got %v", NeutralScore, got)
	}
}

func TestMonitorAllSuccessScoresHigh(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(10)
	for i := 0; i < 10; i++ {
		m.Observe("cg", true, 100*time.Millisecond)
	}

	score := m.Score("cg")
	// 40 (success) + ~29.7 (latency) + 30 (recency) ≈ 99.7
	if score < 95 || score > 100 {
		t.Fatalf("expected score near 100, got %v", score)
	}
}

func TestMonitorAllFailureScoresLow(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(10)
	for i := 0; i < 10; i++ {
		m.Observe("cg", false, 5*time.Second)
	}

	score := m.Score("cg")
	// 0 success, 0 recency, latency 100*(1-0.5)=50 weighted 0.3 → 15
	if score > 20 {
		t.Fatalf("expected score <= 20, got %v", score)
	}
}

func TestMonitorSlidingWindowDropsOldest(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(4)
	for i := 0; i < 4; i++ {
		m.Observe("cg", false, time.Second)
	}
	// Four successes push all failures out of the window.
	for i := 0; i < 4; i++ {
		m.Observe("cg", true, time.Second)
	}

	snap := m.Snapshot()
	rec, ok := snap["cg"]
	if !ok {
		t.Fatal("missing record for cg")
	}
	if rec.SuccessRate != 1.0 {
		t.Fatalf("expected success rate 1.0 after window rollover, got %v", rec.SuccessRate)
	}
	if rec.Observations != 4 {
		t.Fatalf("expected 4 observations in window, got %d", rec.Observations)
	}
}

func TestMonitorLatencyEMA(t *testing.T) {
	t.Parallel()

	m, _ := newTestMonitor(10)
	m.Observe("cg", true, 100*time.Millisecond)
	m.Observe("cg", true, 200*time.Millisecond)

	snap := m.Snapshot()
	// First observation seeds the average; second: 0.3*200 + 0.7*100 = 130.
	if got := snap["cg"].AvgResponseMs; got < 129.9 || got > 130.1 {
		t.Fatalf("expected EMA 130ms, got %v", got)
	}
}

func TestMonitorRecencyDecay(t *testing.T) {
	t.Parallel()

	m, now := newTestMonitor(10)
	for i := 0; i < 10; i++ {
		m.Observe("cg", true, 100*time.Millisecond)
	}
	fresh := m.Score("cg")

	*now = now.Add(30 * time.Minute)
	stale := m.Score("cg")

	if stale >= fresh {
		t.Fatalf("score should decay with staleness: fresh=%v stale=%v", fresh, stale)
	}
	// 30 minutes is six half-lives; recency contribution is near zero.
	if fresh-stale < 25 {
		t.Fatalf("expected ~30 point recency drop, got %v", fresh-stale)
	}
}

func TestMonitorLastObserved(t *testing.T) {
	t.Parallel()

	m, now := newTestMonitor(10)
	if !m.LastObserved("cg").IsZero() {
		t.Fatal("expected zero time for unseen resource")
	}
	m.Observe("cg", true, time.Millisecond)
	if !m.LastObserved("cg").Equal(*now) {
		t.Fatalf("expected last observed %v, got %v", *now, m.LastObserved("cg"))
	}
}
