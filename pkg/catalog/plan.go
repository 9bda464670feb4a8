package catalog

import "slices"

// Plan describes a subscription plan and its resource/feature constraints.
// Plans are immutable catalog entries: loaded once per session through a
// Source and never mutated afterwards.
type Plan struct {
	ID          PlanID
	Name        string
	Description string
	Limits      map[Resource]int64 // -1 represents unlimited
	Features    []Feature          // Capability flags enabled for this plan
	Display     []string           // Marketing strings shown on the paywall
	Price       Price
	TrialDays   int // Number of trial days (0 disables trial)
}

// HasFeature reports whether the plan enables the given capability flag.
func (p Plan) HasFeature(f Feature) bool {
	return slices.Contains(p.Features, f)
}

// Limit returns the limit for a resource.
// Returns ErrInvalidResource when the plan does not define the resource.
func (p Plan) Limit(res Resource) (int64, error) {
	limit, ok := p.Limits[res]
	if !ok {
		return 0, ErrInvalidResource
	}
	return limit, nil
}

// IsFree reports whether this is the unbilled tier.
func (p Plan) IsFree() bool {
	return p.ID == PlanFree
}
