package subscription

import (
	"context"

	"github.com/fintly/billingkit/pkg/catalog"
)

// Backend is the slice of the backend subscription API the engine mutates
// and reads through. Implemented by the backendapi client; mocked in tests.
//
// The backend serializes concurrent mutations against the same subscription.
// The engine serializes its own user-initiated mutations locally, but
// cross-process races (an IAP confirmation racing a checkout poll) are the
// backend's to resolve; this interface assumes it does.
type Backend interface {
	// CurrentSubscription fetches the authoritative subscription record.
	CurrentSubscription(ctx context.Context) (*Subscription, error)

	// Plans fetches the backend's plan catalog.
	Plans(ctx context.Context) ([]catalog.Plan, error)

	// StartTrial begins the one-shot trial for the given plan.
	StartTrial(ctx context.Context, req TrialRequest) error

	// Cancel requests cancellation. For a trial this reverts to free
	// immediately; for a paid subscription it schedules cancellation at
	// period end.
	Cancel(ctx context.Context) error

	// Reactivate clears a pending cancellation.
	Reactivate(ctx context.Context) error

	// ChangePlan switches plan (and optionally period). The provider
	// handles proration; an empty period keeps the current one.
	ChangePlan(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) error
}
