package catalog

import "errors"

var (
	ErrPlanNotFound             = errors.New("catalog: plan not found")
	ErrInvalidResource          = errors.New("catalog: invalid resource")
	ErrInvalidBillingPeriod     = errors.New("catalog: invalid billing period")
	ErrInvalidPlanConfiguration = errors.New("catalog: invalid plan configuration")
	ErrFailedToLoadPlans        = errors.New("catalog: failed to load plans")
)
