package subscription

import (
	"context"
	"errors"

	"github.com/fintly/billingkit/pkg/catalog"
)

// TrialDays is how long a trial runs. The backend sets the authoritative
// trialEndsAt; this constant exists for display before the refetch lands.
const TrialDays = 7

// TrialManager owns the free-to-paid trial boundary. Trials never involve a
// billing provider: no money was ever charged, so starting, changing, or
// cancelling one is purely a backend mutation.
type TrialManager struct {
	backend Backend
	catalog *catalog.Catalog
}

// NewTrialManager creates a TrialManager.
// Panics if a dependency is nil to fail fast during composition.
func NewTrialManager(backend Backend, cat *catalog.Catalog) *TrialManager {
	if backend == nil {
		panic("subscription: Backend is required")
	}
	if cat == nil {
		panic("subscription: Catalog is required")
	}
	return &TrialManager{backend: backend, catalog: cat}
}

// StartTrial validates the trial preconditions and starts the trial.
// Preconditions: the user is on the free plan, has never used a trial, and
// has no external subscription. All failures wrap ErrInvalidState and are
// rejected before any network call.
func (m *TrialManager) StartTrial(ctx context.Context, sub *Subscription, planID catalog.PlanID, device DeviceInfo) error {
	if sub.Plan != catalog.PlanFree {
		return ErrNotOnFreePlan
	}
	if !sub.CanUseTrial {
		return ErrTrialAlreadyUsed
	}
	if sub.ExternalSubscriptionID != "" {
		return ErrAlreadySubscribed
	}

	plan, err := m.catalog.Plan(planID)
	if err != nil {
		return err
	}
	if plan.IsFree() {
		return ErrTrialNotOffered
	}
	if plan.TrialDays <= 0 {
		return ErrTrialNotOffered
	}

	if err := m.backend.StartTrial(ctx, TrialRequest{Plan: planID, Device: device}); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}
	return nil
}

// CancelTrial reverts an active trial to the free plan immediately.
// Valid only while trialing. This is deliberately not routed through a
// billing provider: conflating trial cancellation with paid cancellation
// would schedule a period-end cancel for a period that does not exist.
func (m *TrialManager) CancelTrial(ctx context.Context, sub *Subscription) error {
	if !sub.IsTrialing() {
		return ErrTrialNotActive
	}

	if err := m.backend.Cancel(ctx); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}
	return nil
}

// ChangePlanDuringTrial switches the trialed plan. The remaining trial days
// carry over: trialEndsAt is preserved by the backend, unlike a paid plan
// change which prorates instead.
func (m *TrialManager) ChangePlanDuringTrial(ctx context.Context, sub *Subscription, planID catalog.PlanID) error {
	if !sub.IsTrialing() {
		return ErrTrialNotActive
	}

	plan, err := m.catalog.Plan(planID)
	if err != nil {
		return err
	}
	if plan.IsFree() {
		return ErrTrialNotOffered
	}

	if err := m.backend.ChangePlan(ctx, planID, ""); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}
	return nil
}
