package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Source defines how plans are loaded into the catalog.
type Source interface {
	Load(ctx context.Context) (map[PlanID]Plan, error)
}

// Catalog holds the immutable set of purchasable plans for a session.
// All quota and feature lookups must go through the catalog; components
// must never hardcode limit numbers.
type Catalog struct {
	plans map[PlanID]Plan
}

// New loads plans from the given source and validates them.
// Panics if src is nil to fail fast during initialization.
func New(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("catalog: Source is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	return &Catalog{plans: plans}, nil
}

// Plan returns the catalog entry for the given plan ID.
func (c *Catalog) Plan(id PlanID) (Plan, error) {
	plan, ok := c.plans[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

// Free returns the unbilled tier. The catalog guarantees its presence,
// so callers can use it as an entitlement fallback without error handling.
func (c *Catalog) Free() Plan {
	return c.plans[PlanFree]
}

// Plans returns all plans ordered free, premium, pro.
func (c *Catalog) Plans() []Plan {
	order := []PlanID{PlanFree, PlanPremium, PlanPro}

	result := make([]Plan, 0, len(c.plans))
	for _, id := range order {
		if plan, ok := c.plans[id]; ok {
			result = append(result, plan)
		}
	}
	return result
}

// ParsePlanID converts a raw string into a known PlanID.
func ParsePlanID(raw string) (PlanID, error) {
	id := PlanID(strings.ToLower(raw))
	switch id {
	case PlanFree, PlanPremium, PlanPro:
		return id, nil
	default:
		return "", ErrPlanNotFound
	}
}

// validatePlans ensures plan configurations are internally consistent.
// Catches common configuration errors early to prevent runtime issues.
func validatePlans(plans map[PlanID]Plan) error {
	if _, ok := plans[PlanFree]; !ok {
		return errors.Join(ErrInvalidPlanConfiguration,
			errors.New("free plan is required as the entitlement fallback"))
	}

	for planID, plan := range plans {
		if plan.ID != planID {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", planID, plan.ID))
		}

		if plan.TrialDays < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative trial days: %d", planID, plan.TrialDays))
		}

		if plan.ID == PlanFree && plan.Price.Kind != PriceKindNone {
			return errors.Join(ErrInvalidPlanConfiguration,
				errors.New("free plan must not carry a recurring price"))
		}

		if plan.ID != PlanFree && plan.Price.Kind != PriceKindRecurring {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("paid plan %s must carry a recurring price", planID))
		}

		for res, limit := range plan.Limits {
			if limit < Unlimited {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s has invalid limit %d for %s", planID, limit, res))
			}
			if !slices.Contains(knownResources, res) {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s references unknown resource %s", planID, res))
			}
		}
	}
	return nil
}

var knownResources = []Resource{
	ResourceBudgets,
	ResourceGoals,
	ResourceAssistantQueries,
}
