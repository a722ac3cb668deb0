package orchestrator

import (
	"sync"

	"coinboard/internal/domain"
)

// defaultRotationK is how many of the best-scoring candidates share traffic
// before strict fallback resumes.
const defaultRotationK = 3

// roundRobin specializes candidate ordering for RPC-node categories: many
// descriptors share one tier and one chain, so instead of pinning all
// traffic to the single best-scoring node, rotate among the top K. The
// remainder of the list keeps its priority order as fallback.
type roundRobin struct {
	mu       sync.Mutex
	counters map[domain.Category]uint64
	k        int
}

func newRoundRobin(k int) *roundRobin {
	if k <= 0 {
		k = defaultRotationK
	}
	return &roundRobin{counters: make(map[domain.Category]uint64), k: k}
}

// order rotates the first min(k, len) candidates of an already
// (tier, score)-sorted list. Each call advances the rotation, spreading
// consecutive requests across the top candidates.
func (r *roundRobin) order(category domain.Category, candidates []domain.ResourceDescriptor) []domain.ResourceDescriptor {
	k := r.k
	if len(candidates) < k {
		k = len(candidates)
	}
	if k <= 1 {
		return candidates
	}

	r.mu.Lock()
	offset := int(r.counters[category] % uint64(k))
	r.counters[category]++
	r.mu.Unlock()

	out := make([]domain.ResourceDescriptor, 0, len(candidates))
	for i := 0; i < k; i++ {
		out = append(out, candidates[(offset+i)%k])
	}
	out = append(out, candidates[k:]...)
	return out
}
