package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SourceCache is the FetchResult source id used when a request is served
// from cache without touching any provider.
const SourceCache = "cache"

// ErrUnknownCategory signals a caller error: the requested category has no
// entry in the registry. Never retried.
var ErrUnknownCategory = errors.New("unknown category")

// FailKind classifies a per-resource failure for breaker and metrics
// accounting. Empty-but-valid payloads are not failures.
type FailKind string

const (
	FailTimeout   FailKind = "timeout"
	FailTransport FailKind = "transport"
	FailProvider  FailKind = "provider"
)

// ResourceError is a failure local to one resource. It is absorbed by the
// fallback loop and never surfaced to the caller individually.
type ResourceError struct {
	ResourceID string
	Kind       FailKind
	Err        error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %s: %s: %v", e.ResourceID, e.Kind, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// NewResourceError wraps err as a resource-local failure of the given kind.
func NewResourceError(id string, kind FailKind, err error) *ResourceError {
	return &ResourceError{ResourceID: id, Kind: kind, Err: err}
}

// ExhaustedError is the only "all failed" signal a caller ever sees. It
// carries the full attempted list for diagnosability.
type ExhaustedError struct {
	Category  Category
	Attempted []string
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("all providers exhausted for %s (no eligible candidates)", e.Category)
	}
	return fmt.Sprintf("all providers exhausted for %s (attempted: %s)", e.Category, strings.Join(e.Attempted, ", "))
}

// FetchResult is the orchestrator's output contract: either Data or Err is
// set, never both.
type FetchResult struct {
	Data      any       `json:"data,omitempty"`
	Err       error     `json:"-"`
	SourceID  string    `json:"source_id"`
	Attempted []string  `json:"attempted"`
	ServedAt  time.Time `json:"served_at"`
}

// OK reports whether the fetch produced usable data.
func (r FetchResult) OK() bool { return r.Err == nil }
