package subscription

import (
	"log/slog"

	"github.com/fintly/billingkit/pkg/catalog"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithCounter registers a usage counter for a resource. Counters must be
// fast as they run on every entitlement read. Panics if a counter for the
// same resource is already registered to prevent accidental overwrites.
func WithCounter(res catalog.Resource, fn UsageCounterFunc) ServiceOption {
	return func(s *service) {
		if fn == nil {
			return
		}
		if _, exists := s.counters[res]; exists {
			panic("subscription: counter for resource " + string(res) + " already registered")
		}
		s.counters[res] = fn
	}
}

// WithSnapshotStore replaces the default in-memory snapshot cache,
// e.g. with the Redis-backed store.
func WithSnapshotStore(store SnapshotStore) ServiceOption {
	return func(s *service) {
		if store != nil {
			s.snapshots = store
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}
