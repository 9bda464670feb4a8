package billing

import "errors"

var (
	ErrFreePlanNotPurchasable = errors.New("billing: free plan cannot be purchased")
	ErrInvalidBillingPeriod   = errors.New("billing: invalid billing period")
	ErrPackageNotFound        = errors.New("billing: no store package matches plan and period")
	ErrNoCurrentOffering      = errors.New("billing: store returned no current offering")
	ErrUnknownPlatform        = errors.New("billing: unknown platform")
	ErrProviderFailure        = errors.New("billing: provider request failed")
)
