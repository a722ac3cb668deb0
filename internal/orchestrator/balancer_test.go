package orchestrator

import (
	"testing"

	"coinboard/internal/domain"
)

func descs(ids ...string) []domain.ResourceDescriptor {
	out := make([]domain.ResourceDescriptor, len(ids))
	for i, id := range ids {
		out[i] = domain.ResourceDescriptor{ID: id}
	}
	return out
}

func firstIDs(in []domain.ResourceDescriptor) []string {
	out := make([]string, len(in))
	for i, d := range in {
		out[i] = d.ID
	}
	return out
}

func TestRoundRobinRotatesTopK(t *testing.T) {
	t.Parallel()

	rr := newRoundRobin(3)
	cands := descs("a", "b", "c", "d")

	want := [][]string{
		{"a", "b", "c", "d"},
		{"b", "c", "a", "d"},
		{"c", "a", "b", "d"},
		{"a", "b", "c", "d"},
	}
	for i, w := range want {
		got := firstIDs(rr.order(domain.CategoryRPCNode, cands))
		for j := range w {
			if got[j] != w[j] {
				t.Fatalf("rotation %d: expected %v, got %v", i, w, got)
			}
		}
	}
}

func TestRoundRobinSmallPools(t *testing.T) {
	t.Parallel()

	rr := newRoundRobin(3)
	one := descs("only")
	if got := firstIDs(rr.order(domain.CategoryRPCNode, one)); got[0] != "only" {
		t.Fatalf("single candidate must pass through, got %v", got)
	}
	if got := rr.order(domain.CategoryRPCNode, nil); len(got) != 0 {
		t.Fatalf("empty pool must stay empty, got %v", got)
	}
}

func TestRoundRobinPerCategoryCounters(t *testing.T) {
	t.Parallel()

	rr := newRoundRobin(2)
	cands := descs("a", "b")

	_ = rr.order(domain.CategoryRPCNode, cands)
	// A different category starts its own rotation from the beginning.
	got := firstIDs(rr.order(domain.Category("rpc_node_l2"), cands))
	if got[0] != "a" {
		t.Fatalf("counters must be category-scoped, got %v", got)
	}
}
