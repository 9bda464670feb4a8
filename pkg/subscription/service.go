package subscription

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/entitlement"
)

// Service is the facade every consumer of subscription state goes through.
//
// Every mutating method follows the same pattern: validate locally, delegate
// to the trial manager, billing provider, or backend, then refetch the
// canonical record instead of patching local state from the mutation's
// return value. A partially-succeeded mutation therefore never corrupts the
// local snapshot.
type Service interface {
	// Current returns the last-known subscription record. Before the first
	// successful refresh it returns the implicit free-tier record, so
	// consumers never observe a nil subscription.
	Current(ctx context.Context) *Subscription

	// Refresh refetches the canonical record from the backend and caches it.
	Refresh(ctx context.Context) (*Subscription, error)

	// Catalog returns the session's plan catalog.
	Catalog() *catalog.Catalog

	// Entitlements derives the capability/quota set from the effective plan
	// and the registered usage counters. Never returns a nil projection.
	Entitlements(ctx context.Context) entitlement.Entitlements

	// StartTrial begins the one-shot free trial for a paid plan.
	StartTrial(ctx context.Context, plan catalog.PlanID, device DeviceInfo) error

	// CancelSubscription cancels a trial immediately or schedules a paid
	// subscription's cancellation at period end.
	CancelSubscription(ctx context.Context) error

	// ReactivateSubscription clears a pending cancellation before the
	// period lapses.
	ReactivateSubscription(ctx context.Context) error

	// ChangePlan switches plan: trial changes preserve the trial window,
	// paid changes delegate proration to the provider.
	ChangePlan(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) error

	// Purchase initiates a purchase through the active billing provider.
	Purchase(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*billing.PurchaseResult, error)

	// RestorePurchases re-syncs provider entitlements and refreshes the
	// record. Failures are logged, never returned: restore is a
	// reconciliation path and eventual consistency arrives with the next
	// successful sync.
	RestorePurchases(ctx context.Context)

	// Derived read helpers.
	IsTrialing(ctx context.Context) bool
	IsFreePlan(ctx context.Context) bool
	TrialDaysRemaining(ctx context.Context) int
	PlanLimits(ctx context.Context) map[catalog.Resource]int64
	CanCreate(ctx context.Context, res catalog.Resource) bool
	HasFeature(ctx context.Context, f catalog.Feature) bool
}

// UsageCounterFunc returns the current usage count for one resource.
// Must be fast and ideally cached as it runs on every entitlement read.
type UsageCounterFunc func(ctx context.Context) (int64, error)

type service struct {
	userID    uuid.UUID
	backend   Backend
	provider  billing.Provider
	trial     *TrialManager
	catalog   *catalog.Catalog
	snapshots SnapshotStore
	counters  map[catalog.Resource]UsageCounterFunc
	log       *slog.Logger

	// mu serializes user-initiated mutations. Cross-process races (a store
	// confirmation racing a checkout poll) are resolved by the backend,
	// not here.
	mu sync.Mutex
}

// NewService creates the subscription service facade.
// Panics if a required dependency is nil to fail fast during composition.
func NewService(userID uuid.UUID, backend Backend, provider billing.Provider, cat *catalog.Catalog, opts ...ServiceOption) Service {
	if backend == nil {
		panic("subscription: Backend is required")
	}
	if provider == nil {
		panic("subscription: billing.Provider is required")
	}
	if cat == nil {
		panic("subscription: Catalog is required")
	}

	s := &service{
		userID:    userID,
		backend:   backend,
		provider:  provider,
		trial:     NewTrialManager(backend, cat),
		catalog:   cat,
		snapshots: NewMemoryStore(),
		counters:  make(map[catalog.Resource]UsageCounterFunc),
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) Current(ctx context.Context) *Subscription {
	sub, err := s.snapshots.Get(ctx, s.userID)
	if err != nil {
		return NewFreeSubscription(s.userID)
	}
	return sub
}

func (s *service) Refresh(ctx context.Context) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

// refresh refetches and caches the canonical record. Callers hold s.mu.
func (s *service) refresh(ctx context.Context) (*Subscription, error) {
	remote, err := s.backend.CurrentSubscription(ctx)
	if err != nil {
		return nil, errors.Join(ErrBackendFailure, err)
	}

	// The backend is authoritative, so the remote record is applied
	// unconditionally; an unexpected transition is only an anomaly to log.
	if local, err := s.snapshots.Get(ctx, s.userID); err == nil {
		if !CanTransition(local.Status, remote.Status) {
			s.log.WarnContext(ctx, "unexpected subscription status transition",
				slog.String("from", string(local.Status)),
				slog.String("to", string(remote.Status)),
			)
		}
	}

	if err := s.snapshots.Save(ctx, remote); err != nil {
		s.log.WarnContext(ctx, "failed to cache subscription snapshot", slog.Any("error", err))
	}

	return remote.Clone(), nil
}

func (s *service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *service) Entitlements(ctx context.Context) entitlement.Entitlements {
	sub := s.Current(ctx)

	plan, err := s.catalog.Plan(sub.EffectivePlan())
	if err != nil {
		plan = s.catalog.Free()
	}

	usage := make(entitlement.Usage, len(s.counters))
	for res, counter := range s.counters {
		count, err := counter(ctx)
		if err != nil {
			// Fail open to zero usage rather than blocking the UI; the
			// backend still enforces limits on write.
			s.log.WarnContext(ctx, "usage counter failed",
				slog.String("resource", string(res)), slog.Any("error", err))
			continue
		}
		usage[res] = count
	}

	return entitlement.Resolve(plan, usage)
}

func (s *service) StartTrial(ctx context.Context, plan catalog.PlanID, device DeviceInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.trial.StartTrial(ctx, s.Current(ctx), plan, device); err != nil {
		return err
	}

	_, err := s.refresh(ctx)
	return err
}

func (s *service) CancelSubscription(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.Current(ctx)

	// A trial is cancelled by the trial manager, never by the billing
	// provider: no payment exists to cancel.
	if sub.IsTrialing() {
		if err := s.trial.CancelTrial(ctx, sub); err != nil {
			return err
		}
		_, err := s.refresh(ctx)
		return err
	}

	if !sub.IsPaid() || sub.Platform == billing.PlatformNone {
		return ErrNotPaidSubscription
	}
	if sub.CancelAtPeriodEnd {
		return ErrCancellationPending
	}

	if err := s.backend.Cancel(ctx); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}

	_, err := s.refresh(ctx)
	return err
}

func (s *service) ReactivateSubscription(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.Current(ctx)
	if !sub.CancelAtPeriodEnd {
		return ErrNoCancellationToUndo
	}
	if sub.HasLapsed() {
		return ErrSubscriptionLapsed
	}

	if err := s.backend.Reactivate(ctx); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}

	_, err := s.refresh(ctx)
	return err
}

func (s *service) ChangePlan(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.Current(ctx)

	if sub.IsTrialing() {
		if err := s.trial.ChangePlanDuringTrial(ctx, sub, plan); err != nil {
			return err
		}
		_, err := s.refresh(ctx)
		return err
	}

	if !sub.IsPaid() {
		return ErrNotPaidSubscription
	}
	if sub.CancelAtPeriodEnd {
		return ErrCancellationPending
	}
	if plan == catalog.PlanFree {
		return billing.ErrFreePlanNotPurchasable
	}
	if _, err := s.catalog.Plan(plan); err != nil {
		return err
	}
	if !period.Valid() {
		return billing.ErrInvalidBillingPeriod
	}

	if err := s.backend.ChangePlan(ctx, plan, period); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}

	// Proration happened provider-side; never trust a locally-assumed
	// result, always refetch.
	_, err := s.refresh(ctx)
	return err
}

func (s *service) Purchase(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*billing.PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.Current(ctx)
	if sub.IsPaid() && sub.Plan == plan {
		return nil, ErrAlreadySubscribed
	}

	result, err := s.provider.Purchase(ctx, plan, period)
	if err != nil {
		return nil, err
	}

	// A declined purchase is a successful no-op: no refetch, no alert.
	if result.Outcome == billing.OutcomeDeclined {
		return result, nil
	}

	// Native purchases settle synchronously with the sheet, so the backend
	// record is refetched now. Checkout sessions settle out of process and
	// are picked up by reconciliation instead.
	if result.CustomerInfo != nil {
		if _, err := s.refresh(ctx); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (s *service) RestorePurchases(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.provider.Restore(ctx); err != nil {
		s.log.WarnContext(ctx, "restore purchases failed", slog.Any("error", err))
		return
	}

	if _, err := s.refresh(ctx); err != nil {
		s.log.WarnContext(ctx, "subscription refresh after restore failed", slog.Any("error", err))
	}
}

func (s *service) IsTrialing(ctx context.Context) bool {
	return s.Current(ctx).IsTrialing()
}

func (s *service) IsFreePlan(ctx context.Context) bool {
	return s.Current(ctx).IsFreePlan()
}

func (s *service) TrialDaysRemaining(ctx context.Context) int {
	return s.Current(ctx).TrialDaysRemaining()
}

func (s *service) PlanLimits(ctx context.Context) map[catalog.Resource]int64 {
	plan, err := s.catalog.Plan(s.Current(ctx).EffectivePlan())
	if err != nil {
		plan = s.catalog.Free()
	}

	limits := make(map[catalog.Resource]int64, len(plan.Limits))
	for res, limit := range plan.Limits {
		limits[res] = limit
	}
	return limits
}

func (s *service) CanCreate(ctx context.Context, res catalog.Resource) bool {
	return s.Entitlements(ctx).Quota(res).CanCreate()
}

func (s *service) HasFeature(ctx context.Context, f catalog.Feature) bool {
	return s.Entitlements(ctx).Has(f)
}
