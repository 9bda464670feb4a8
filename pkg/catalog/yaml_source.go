package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSource loads plans from a YAML file on disk.
type fileSource struct {
	path string
}

// NewFileSource returns a Source that reads the plan catalog from a YAML file.
// The file is read on every Load call; the catalog itself loads only once
// per session.
func NewFileSource(path string) Source {
	if path == "" {
		panic("catalog: file path is required")
	}
	return &fileSource{path: path}
}

// planFile is the YAML wire format of the catalog file.
type planFile struct {
	Plans []planEntry `yaml:"plans"`
}

type planEntry struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Limits      map[string]int64 `yaml:"limits"`
	Features    []string         `yaml:"features"`
	Display     []string         `yaml:"display"`
	Price       *priceEntry      `yaml:"price"`
	TrialDays   int              `yaml:"trial_days"`
}

type priceEntry struct {
	Monthly moneyEntry `yaml:"monthly"`
	Yearly  moneyEntry `yaml:"yearly"`
}

type moneyEntry struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

func (s *fileSource) Load(ctx context.Context) (map[PlanID]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var file planFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[PlanID]Plan, len(file.Plans))
	for _, entry := range file.Plans {
		id, err := ParsePlanID(entry.ID)
		if err != nil {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("unknown plan id %q in %s", entry.ID, s.path))
		}

		plan := Plan{
			ID:          id,
			Name:        entry.Name,
			Description: entry.Description,
			Limits:      make(map[Resource]int64, len(entry.Limits)),
			Display:     entry.Display,
			TrialDays:   entry.TrialDays,
		}

		for res, limit := range entry.Limits {
			plan.Limits[Resource(res)] = limit
		}

		for _, f := range entry.Features {
			plan.Features = append(plan.Features, Feature(f))
		}

		// Price shape is resolved here, once. Absent price means free tier.
		if entry.Price == nil {
			plan.Price = FreePrice()
		} else {
			plan.Price = RecurringPrice(
				Money{Amount: entry.Price.Monthly.Amount, Currency: entry.Price.Monthly.Currency},
				Money{Amount: entry.Price.Yearly.Amount, Currency: entry.Price.Yearly.Currency},
			)
		}

		plans[id] = plan
	}

	return plans, nil
}
