package subscription

import (
	"errors"
	"fmt"
)

// ErrInvalidState is the root of every precondition failure: the requested
// operation does not apply to the subscription's current state. The specific
// causes below wrap it, so callers can match either the broad class or the
// exact reason.
var ErrInvalidState = errors.New("subscription: invalid state for operation")

var (
	ErrTrialAlreadyUsed     = fmt.Errorf("%w: trial already used", ErrInvalidState)
	ErrTrialNotActive       = fmt.Errorf("%w: no active trial", ErrInvalidState)
	ErrNotOnFreePlan        = fmt.Errorf("%w: user is not on the free plan", ErrInvalidState)
	ErrAlreadySubscribed    = fmt.Errorf("%w: an external subscription already exists", ErrInvalidState)
	ErrNotPaidSubscription  = fmt.Errorf("%w: operation requires a paid subscription", ErrInvalidState)
	ErrCancellationPending  = fmt.Errorf("%w: cancellation already pending", ErrInvalidState)
	ErrNoCancellationToUndo = fmt.Errorf("%w: no pending cancellation to reactivate", ErrInvalidState)
	ErrSubscriptionLapsed   = fmt.Errorf("%w: billing period already ended", ErrInvalidState)
	ErrTrialNotOffered      = fmt.Errorf("%w: plan does not offer a trial", ErrInvalidState)
)

var (
	ErrUnknownStatus    = errors.New("subscription: unknown status")
	ErrSnapshotNotFound = errors.New("subscription: snapshot not found")
	ErrBackendFailure   = errors.New("subscription: backend request failed")
)
