package subscription

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
)

// Subscription is the per-user subscription record. The backend owns the
// authoritative copy; this type is the local snapshot every component reads.
type Subscription struct {
	UserID                 uuid.UUID
	Plan                   catalog.PlanID
	Status                 Status
	Platform               billing.Platform // Which billing path owns the paid relationship
	ExternalCustomerID     string           // Provider's customer ID (empty for free)
	ExternalSubscriptionID string           // Provider's subscription ID (empty for free)
	CurrentPeriodStart     time.Time
	CurrentPeriodEnd       time.Time
	CancelAtPeriodEnd      bool
	TrialEndsAt            *time.Time // Set only while a trial is or was running
	CanUseTrial            bool       // One-shot: flips false forever on first trial
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewFreeSubscription returns the record every user implicitly starts with
// at signup, and the fallback consumers see before the first refetch.
func NewFreeSubscription(userID uuid.UUID) *Subscription {
	now := time.Now().UTC()
	return &Subscription{
		UserID:      userID,
		Plan:        catalog.PlanFree,
		Status:      StatusActive,
		Platform:    billing.PlatformNone,
		CanUseTrial: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsTrialing returns true if the subscription is in trial status.
func (s *Subscription) IsTrialing() bool {
	return s.Status == StatusTrialing
}

// IsFreePlan returns true if the user is on the unbilled tier.
func (s *Subscription) IsFreePlan() bool {
	return s.Plan == catalog.PlanFree
}

// IsPaid returns true for an active, paid, non-trial subscription.
func (s *Subscription) IsPaid() bool {
	return s.Status == StatusActive && !s.IsFreePlan()
}

// HasLapsed reports whether the current billing period has already ended.
func (s *Subscription) HasLapsed() bool {
	return s.hasLapsedAt(time.Now().UTC())
}

func (s *Subscription) hasLapsedAt(now time.Time) bool {
	if s.CurrentPeriodEnd.IsZero() {
		return false
	}
	return now.After(s.CurrentPeriodEnd)
}

// EffectivePlan returns the plan whose benefits currently apply: the
// subscribed plan while the status grants paid access, the free tier
// otherwise. Entitlements are always derived from this, never from the
// raw Plan field.
func (s *Subscription) EffectivePlan() catalog.PlanID {
	if s.Status.GrantsPaidAccess() {
		return s.Plan
	}
	return catalog.PlanFree
}

// TrialDaysRemainingAt returns the whole days left in the trial at a given
// time, rounding partial days up. Expired-but-not-yet-reconciled trials
// report zero, never a negative number.
func (s *Subscription) TrialDaysRemainingAt(now time.Time) int {
	if s.TrialEndsAt == nil {
		return 0
	}

	remaining := s.TrialEndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}

	return int(math.Ceil(remaining.Hours() / 24))
}

// TrialDaysRemaining returns the whole days left in the trial.
func (s *Subscription) TrialDaysRemaining() int {
	return s.TrialDaysRemainingAt(time.Now().UTC())
}

// Clone returns a deep copy of the record.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	dup := *s
	if s.TrialEndsAt != nil {
		t := *s.TrialEndsAt
		dup.TrialEndsAt = &t
	}
	return &dup
}
