package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/fintly/billingkit/pkg/catalog"
)

// Platform identifies which billing path a client uses. It is decided once
// at composition time from the runtime platform; call sites depend only on
// the Provider interface and never branch on platform themselves.
type Platform string

const (
	PlatformCheckout  Platform = "checkout"   // Web and Android: hosted checkout redirect
	PlatformNativeIAP Platform = "native_iap" // iOS: store-mediated purchase sheet
	PlatformNone      Platform = "none"       // Free tier, no billing relationship
)

// ParsePlatform converts a raw string into a Platform, rejecting anything
// outside the known set so records decoded from the wire stay within the enum.
func ParsePlatform(raw string) (Platform, error) {
	switch p := Platform(raw); p {
	case PlatformCheckout, PlatformNativeIAP, PlatformNone:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, raw)
	}
}

// Outcome is the trichotomy every purchase flow resolves to. A user backing
// out (dismissing the native sheet, declining the pre-redirect disclosure)
// is a normal outcome, not an error, and must never reach an error path.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeDeclined  Outcome = "declined"
	OutcomeFailed    Outcome = "failed"
)

// PurchaseResult is the provisional result of initiating a purchase.
// For the checkout platform a succeeded outcome only means a session was
// created; the authoritative confirmation arrives via reconciliation.
type PurchaseResult struct {
	Outcome Outcome

	// Checkout platform only: the hosted payment page to open externally
	// and the session to poll afterwards.
	CheckoutURL string
	SessionID   string

	// Native platform only: customer info returned by the purchase sheet.
	CustomerInfo *CustomerInfo
}

// Provider is the strategy interface over the two billing paths.
type Provider interface {
	// Platform reports which billing path this provider implements.
	Platform() Platform

	// Purchase initiates a purchase of the given plan and period.
	// User-declined flows return OutcomeDeclined with a nil error.
	Purchase(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*PurchaseResult, error)

	// Restore re-syncs previously purchased entitlements. Idempotent:
	// repeated calls must not duplicate entitlements or error on a no-op.
	// Platforms with nothing to restore locally return (nil, nil).
	Restore(ctx context.Context) (*CustomerInfo, error)
}

// CheckoutAPI is the slice of the backend billing API the checkout provider
// and the reconciler need. Implemented by the backendapi client.
type CheckoutAPI interface {
	// CreateCheckoutSession asks the backend for a hosted checkout session.
	CreateCheckoutSession(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*CheckoutSession, error)

	// CheckoutSession fetches the current status of a session.
	CheckoutSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// CheckoutSession is a hosted checkout session handed to an external browser.
type CheckoutSession struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// SessionStatus is the backend's view of a checkout session.
type SessionStatus struct {
	Status        string // e.g. "open", "complete", "expired"
	PaymentStatus string // e.g. "unpaid", "paid"
}

// Settled reports whether the session is unambiguously complete AND paid.
// Anything else (pending, failed, unknown) must leave local state untouched.
func (s SessionStatus) Settled() bool {
	return s.Status == sessionStatusComplete && s.PaymentStatus == paymentStatusPaid
}

const (
	sessionStatusComplete = "complete"
	paymentStatusPaid     = "paid"
)
