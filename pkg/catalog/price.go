package catalog

// PriceKind discriminates the price union. The upstream billing API is loose
// about the price field shape, so the shape is resolved exactly once at the
// catalog boundary and downstream code only ever sees the tagged form.
type PriceKind string

const (
	PriceKindNone      PriceKind = "none"      // Free plans with no billing
	PriceKindRecurring PriceKind = "recurring" // Paid plans billed monthly or yearly
)

// Price is a tagged union over the two price shapes a plan can carry.
// Kind must be checked (or Amount used) instead of inspecting the
// monetary fields directly.
type Price struct {
	Kind    PriceKind
	Monthly Money
	Yearly  Money
}

// FreePrice returns the price of an unbilled plan.
func FreePrice() Price {
	return Price{Kind: PriceKindNone}
}

// RecurringPrice returns a recurring price with per-period amounts.
func RecurringPrice(monthly, yearly Money) Price {
	return Price{
		Kind:    PriceKindRecurring,
		Monthly: monthly,
		Yearly:  yearly,
	}
}

// IsFree reports whether the plan carries no recurring charge.
func (p Price) IsFree() bool {
	return p.Kind == PriceKindNone
}

// Amount returns the charge for the given billing period.
// Free plans return a zero Money for any period.
func (p Price) Amount(period BillingPeriod) (Money, error) {
	if p.Kind == PriceKindNone {
		return Money{}, nil
	}

	switch period {
	case BillingPeriodMonthly:
		return p.Monthly, nil
	case BillingPeriodYearly:
		return p.Yearly, nil
	default:
		return Money{}, ErrInvalidBillingPeriod
	}
}
