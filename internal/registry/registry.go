package registry

import (
	"context"
	"fmt"
	"sort"

	"coinboard/internal/domain"
)

// Adapter performs the actual outbound call for one resource and returns the
// category's canonical payload shape. Implementations own transport and
// per-provider parsing; the orchestrator is agnostic to both.
type Adapter interface {
	Call(ctx context.Context, params domain.Params) (any, error)
}

// Scorer supplies the current composite health score for a resource,
// used as the secondary sort key within a priority tier.
type Scorer interface {
	Score(id string) float64
}

// Registry is the static catalog of every known provider. It is built at
// process start and read-only at call time; candidate ordering is the only
// part that varies, because it consults live health scores.
type Registry struct {
	byCategory map[domain.Category][]domain.ResourceDescriptor
	adapters   map[string]Adapter
	scorer     Scorer
}

// New creates a registry that recognizes every category in
// domain.AllCategories, each starting with an empty provider pool.
func New(scorer Scorer) *Registry {
	byCat := make(map[domain.Category][]domain.ResourceDescriptor, len(domain.AllCategories))
	for _, cat := range domain.AllCategories {
		byCat[cat] = nil
	}
	return &Registry{
		byCategory: byCat,
		adapters:   make(map[string]Adapter),
		scorer:     scorer,
	}
}

// Register binds a descriptor and its adapter into the catalog. Descriptor
// ids must be unique; a zero timeout budget is filled from the tier table.
func (r *Registry) Register(desc domain.ResourceDescriptor, adapter Adapter) error {
	if desc.ID == "" {
		return fmt.Errorf("descriptor missing id")
	}
	if _, exists := r.adapters[desc.ID]; exists {
		return fmt.Errorf("duplicate resource id %q", desc.ID)
	}
	if adapter == nil {
		return fmt.Errorf("resource %q has no adapter", desc.ID)
	}
	if desc.Timeout <= 0 {
		desc.Timeout = domain.DefaultTimeoutForTier(desc.Tier)
	}

	r.byCategory[desc.Category] = append(r.byCategory[desc.Category], desc)
	r.adapters[desc.ID] = adapter
	return nil
}

// Candidates returns the category's descriptors stable-sorted by
// (priority tier asc, composite health score desc). A valid category with no
// providers returns an empty list, not an error.
func (r *Registry) Candidates(category domain.Category) ([]domain.ResourceDescriptor, error) {
	descs, ok := r.byCategory[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCategory, category)
	}

	out := make([]domain.ResourceDescriptor, len(descs))
	copy(out, descs)

	scores := make(map[string]float64, len(out))
	for _, d := range out {
		scores[d.ID] = r.scorer.Score(d.ID)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return scores[out[i].ID] > scores[out[j].ID]
	})
	return out, nil
}

// Adapter returns the adapter bound to a resource id.
func (r *Registry) Adapter(id string) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// All returns every registered descriptor, in no particular order.
func (r *Registry) All() []domain.ResourceDescriptor {
	var out []domain.ResourceDescriptor
	for _, descs := range r.byCategory {
		out = append(out, descs...)
	}
	return out
}
