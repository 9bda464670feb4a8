package catalog

// DefaultPlans returns the built-in plan set used when no catalog file or
// remote plan list is configured. The numbers here mirror the backend's
// canonical catalog; the backend remains authoritative when it serves plans.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:          PlanFree,
			Name:        "Free",
			Description: "Get started with basic budgeting",
			Limits: map[Resource]int64{
				ResourceBudgets:          2,
				ResourceGoals:            1,
				ResourceAssistantQueries: 5,
			},
			Features: []Feature{},
			Display: []string{
				"2 budgets",
				"1 savings goal",
				"5 assistant questions per month",
			},
			Price: FreePrice(),
		},
		{
			ID:          PlanPremium,
			Name:        "Premium",
			Description: "Unlock advanced budgeting and insights",
			Limits: map[Resource]int64{
				ResourceBudgets:          10,
				ResourceGoals:            5,
				ResourceAssistantQueries: 50,
			},
			Features: []Feature{
				FeatureAdvancedReports,
				FeatureDataExport,
				FeatureBudgetAlerts,
			},
			Display: []string{
				"10 budgets",
				"5 savings goals",
				"50 assistant questions per month",
				"Advanced reports",
				"Data export",
				"Budget alerts",
			},
			Price: RecurringPrice(
				Money{Amount: 499, Currency: "USD"},
				Money{Amount: 4990, Currency: "USD"},
			),
			TrialDays: 7,
		},
		{
			ID:          PlanPro,
			Name:        "Pro",
			Description: "Everything unlimited, for power users",
			Limits: map[Resource]int64{
				ResourceBudgets:          Unlimited,
				ResourceGoals:            Unlimited,
				ResourceAssistantQueries: Unlimited,
			},
			Features: []Feature{
				FeatureAdvancedReports,
				FeatureDataExport,
				FeaturePDFExport,
				FeatureTextToSpeech,
				FeatureBudgetAlerts,
				FeatureAdvancedCalculators,
			},
			Display: []string{
				"Unlimited budgets and goals",
				"Unlimited assistant questions",
				"PDF export",
				"Text-to-speech",
				"Advanced calculators",
			},
			Price: RecurringPrice(
				Money{Amount: 999, Currency: "USD"},
				Money{Amount: 9990, Currency: "USD"},
			),
			TrialDays: 7,
		},
	}
}
