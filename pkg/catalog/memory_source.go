package catalog

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type inMemSource struct {
	mu    sync.RWMutex
	plans map[PlanID]Plan
}

// NewInMemSource returns an in-memory Source with a deep copy of the given plans.
// Panics if no plans are provided to ensure the catalog always has at least one
// valid plan. Deep copying prevents external modifications from affecting the
// source's state.
func NewInMemSource(plans ...Plan) Source {
	if len(plans) < 1 {
		panic("catalog: at least one plan is required")
	}

	plansCopy := make(map[PlanID]Plan, len(plans))
	for _, plan := range plans {
		plansCopy[plan.ID] = clonePlan(plan)
	}

	return &inMemSource{plans: plansCopy}
}

// Load returns a copy of all available plans from memory.
func (s *inMemSource) Load(ctx context.Context) (map[PlanID]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plansCopy := make(map[PlanID]Plan, len(s.plans))
	for id, plan := range s.plans {
		plansCopy[id] = clonePlan(plan)
	}
	return plansCopy, nil
}

func clonePlan(p Plan) Plan {
	return Plan{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Limits:      maps.Clone(p.Limits),
		Features:    slices.Clone(p.Features),
		Display:     slices.Clone(p.Display),
		Price:       p.Price,
		TrialDays:   p.TrialDays,
	}
}
