package catalog

// PlanID identifies a purchasable plan tier.
type PlanID string

const (
	PlanFree    PlanID = "free"
	PlanPremium PlanID = "premium"
	PlanPro     PlanID = "pro"
)

// Resource represents a countable per-user resource type.
type Resource string

const (
	ResourceBudgets          Resource = "budgets"
	ResourceGoals            Resource = "goals"
	ResourceAssistantQueries Resource = "assistant_queries" // Monthly allowance
)

const (
	// Unlimited indicates no limit for a resource (-1 chosen for SQL compatibility)
	Unlimited int64 = -1
)

// Feature represents a plan-specific capability that can be enabled/disabled.
type Feature string

const (
	FeatureAdvancedReports     Feature = "advanced_reports"
	FeatureDataExport          Feature = "data_export"
	FeaturePDFExport           Feature = "pdf_export"
	FeatureTextToSpeech        Feature = "text_to_speech"
	FeatureBudgetAlerts        Feature = "budget_alerts"
	FeatureAdvancedCalculators Feature = "advanced_calculators"
)

// AllFeatures lists every known feature flag. Used when projecting a plan
// into a full capability set, so absent features resolve to false rather
// than being missing from the projection.
var AllFeatures = []Feature{
	FeatureAdvancedReports,
	FeatureDataExport,
	FeaturePDFExport,
	FeatureTextToSpeech,
	FeatureBudgetAlerts,
	FeatureAdvancedCalculators,
}

// Money represents a monetary amount in the smallest currency unit.
// For example, $4.99 USD would be Amount: 499, Currency: "USD".
type Money struct {
	Amount   int64  // Amount in smallest currency unit (cents for USD)
	Currency string // ISO 4217 currency code
}

// IsZero reports whether the amount carries no value.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// BillingPeriod represents the billing frequency chosen at purchase time.
type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

// Valid reports whether the period is one of the known billing periods.
func (p BillingPeriod) Valid() bool {
	return p == BillingPeriodMonthly || p == BillingPeriodYearly
}
