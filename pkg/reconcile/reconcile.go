package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/subscription"
)

var (
	// ErrSessionNotSettled is returned by AwaitCheckoutSettlement when the
	// polling budget runs out before the session settles. The session may
	// still settle later; the next foreground sync picks it up.
	ErrSessionNotSettled = errors.New("reconcile: checkout session did not settle in time")
)

// Refresher is the slice of the subscription service the reconciler drives.
// Satisfied by subscription.Service.
type Refresher interface {
	Refresh(ctx context.Context) (*subscription.Subscription, error)
	RestorePurchases(ctx context.Context)
}

// Reconciler converges local subscription state with the backend after
// out-of-process settlement: checkout sessions completing in an external
// browser, store-side renewals, refunds, or payment failures.
//
// Every operation is idempotent. Applying state is always a refetch of the
// canonical record, never a locally-computed patch, so running a sync twice
// (or concurrently with a webhook landing server-side) cannot corrupt state.
type Reconciler struct {
	sessions    billing.CheckoutAPI
	subs        Refresher
	backoff     BackoffStrategy
	maxAttempts int
	log         *slog.Logger
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithBackoff overrides the polling schedule.
func WithBackoff(b BackoffStrategy) ReconcilerOption {
	return func(r *Reconciler) {
		if b != nil {
			r.backoff = b
		}
	}
}

// WithMaxAttempts caps how many times a checkout session is polled before
// giving up. Must be at least 1.
func WithMaxAttempts(n int) ReconcilerOption {
	return func(r *Reconciler) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Reconciler.
// Panics if a required dependency is nil to fail fast during composition.
func New(sessions billing.CheckoutAPI, subs Refresher, opts ...ReconcilerOption) *Reconciler {
	if sessions == nil {
		panic("reconcile: billing.CheckoutAPI is required")
	}
	if subs == nil {
		panic("reconcile: Refresher is required")
	}

	r := &Reconciler{
		sessions:    sessions,
		subs:        subs,
		backoff:     DefaultBackoffStrategy(),
		maxAttempts: 8,
		log:         slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SyncCheckoutSession checks a checkout session once and, if it has settled,
// refetches the canonical subscription record. It reports whether new state
// was applied. The payment may have succeeded even when the sync cannot
// confirm it, so poll and refresh failures are logged and swallowed here:
// callers only ever see (applied bool) and retry on the next sync.
func (r *Reconciler) SyncCheckoutSession(ctx context.Context, sessionID string) bool {
	status, err := r.sessions.CheckoutSession(ctx, sessionID)
	if err != nil {
		r.log.WarnContext(ctx, "checkout session sync failed",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
		return false
	}

	if !status.Settled() {
		return false
	}

	if _, err := r.subs.Refresh(ctx); err != nil {
		r.log.WarnContext(ctx, "subscription refresh after settlement failed",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
		return false
	}

	return true
}

// AwaitCheckoutSettlement polls a checkout session until it settles, the
// session reaches a terminal non-paid state, the polling budget runs out, or
// the context is cancelled. Transient API failures count as attempts and are
// logged, not surfaced: the caller only learns whether state was applied.
//
// Intended for the moment the user returns to the app from the external
// checkout page.
func (r *Reconciler) AwaitCheckoutSettlement(ctx context.Context, sessionID string) error {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		status, err := r.sessions.CheckoutSession(ctx, sessionID)
		switch {
		case err != nil:
			r.log.WarnContext(ctx, "checkout session poll failed",
				slog.String("session_id", sessionID),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		case status.Settled():
			if _, err := r.subs.Refresh(ctx); err != nil {
				// The session has settled; the record arrives with the
				// next successful sync.
				r.log.WarnContext(ctx, "subscription refresh after settlement failed",
					slog.String("session_id", sessionID),
					slog.Any("error", err),
				)
			}
			return nil
		case terminal(status):
			// Sessions in a terminal non-paid state never settle; stop early.
			return ErrSessionNotSettled
		}

		if attempt == r.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff.NextInterval(attempt)):
		}
	}

	return ErrSessionNotSettled
}

// SyncOnForeground converges state when the app returns to the foreground.
// It restores provider entitlements (a no-op on the checkout platform) and
// refreshes the canonical record. Safe to call on every foreground: failures
// are logged and eventual consistency arrives with the next successful sync.
func (r *Reconciler) SyncOnForeground(ctx context.Context) {
	r.subs.RestorePurchases(ctx)

	if _, err := r.subs.Refresh(ctx); err != nil {
		r.log.WarnContext(ctx, "foreground subscription sync failed", slog.Any("error", err))
	}
}

// terminal reports whether a session can no longer settle.
func terminal(s *billing.SessionStatus) bool {
	switch s.Status {
	case "expired", "failed", "canceled":
		return true
	}
	return false
}
