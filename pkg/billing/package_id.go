package billing

import (
	"strings"

	"github.com/fintly/billingkit/pkg/catalog"
)

// PackageIdentifier returns the store package/product identifier for a plan
// and billing period, following the "{plan}_{period}" convention shared with
// the app store products (e.g. "premium_monthly", "pro_yearly").
func PackageIdentifier(plan catalog.PlanID, period catalog.BillingPeriod) string {
	return strings.ToLower(string(plan)) + "_" + string(period)
}

// ParsePackageIdentifier is the inverse of PackageIdentifier. Used to map a
// store product back onto a catalog plan when normalizing customer info.
func ParsePackageIdentifier(ident string) (catalog.PlanID, catalog.BillingPeriod, bool) {
	plan, period, found := strings.Cut(strings.ToLower(ident), "_")
	if !found {
		return "", "", false
	}

	planID, err := catalog.ParsePlanID(plan)
	if err != nil {
		return "", "", false
	}

	p := catalog.BillingPeriod(period)
	if !p.Valid() {
		return "", "", false
	}

	return planID, p, true
}
