package billing

import (
	"context"
	"errors"

	"github.com/fintly/billingkit/pkg/catalog"
)

// DisclosureFunc asks the user to confirm leaving the app for an external
// payment page. The UI owns the dialog; the provider only consumes the
// yes/no answer. A nil func means no disclosure step is wired (tests,
// server-side composition) and the redirect proceeds.
type DisclosureFunc func(ctx context.Context) bool

// CheckoutProvider implements Provider for the web/Android path: the backend
// creates a hosted checkout session and the purchase completes out of
// process in an external browser. Confirmation arrives only through
// reconciliation, never from this provider's return value.
type CheckoutProvider struct {
	api        CheckoutAPI
	disclosure DisclosureFunc
}

// CheckoutOption configures a CheckoutProvider.
type CheckoutOption func(*CheckoutProvider)

// WithDisclosure wires the pre-redirect confirmation step.
func WithDisclosure(fn DisclosureFunc) CheckoutOption {
	return func(p *CheckoutProvider) {
		if fn != nil {
			p.disclosure = fn
		}
	}
}

// NewCheckoutProvider creates the checkout-redirect billing provider.
// Panics if api is nil to fail fast during composition.
func NewCheckoutProvider(api CheckoutAPI, opts ...CheckoutOption) *CheckoutProvider {
	if api == nil {
		panic("billing: CheckoutAPI is required")
	}

	p := &CheckoutProvider{api: api}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CheckoutProvider) Platform() Platform {
	return PlatformCheckout
}

// Purchase creates a checkout session for the plan. A declined disclosure
// is a normal cancellation: OutcomeDeclined, nil error, no session created.
func (p *CheckoutProvider) Purchase(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*PurchaseResult, error) {
	if plan == catalog.PlanFree {
		return nil, ErrFreePlanNotPurchasable
	}
	if !period.Valid() {
		return nil, ErrInvalidBillingPeriod
	}

	if p.disclosure != nil && !p.disclosure(ctx) {
		return &PurchaseResult{Outcome: OutcomeDeclined}, nil
	}

	session, err := p.api.CreateCheckoutSession(ctx, plan, period)
	if err != nil {
		return nil, errors.Join(ErrProviderFailure, err)
	}

	return &PurchaseResult{
		Outcome:     OutcomeSucceeded,
		CheckoutURL: session.URL,
		SessionID:   session.SessionID,
	}, nil
}

// Restore is a no-op on the checkout platform: entitlements are restored by
// refetching the canonical subscription record, not from a local receipt.
func (p *CheckoutProvider) Restore(ctx context.Context) (*CustomerInfo, error) {
	return nil, nil
}
