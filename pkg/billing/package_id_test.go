package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
)

func TestPackageIdentifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "premium_monthly", billing.PackageIdentifier(catalog.PlanPremium, catalog.BillingPeriodMonthly))
	assert.Equal(t, "pro_yearly", billing.PackageIdentifier(catalog.PlanPro, catalog.BillingPeriodYearly))
}

func TestParsePackageIdentifier(t *testing.T) {
	t.Parallel()

	plan, period, ok := billing.ParsePackageIdentifier("PRO_YEARLY")
	require.True(t, ok)
	assert.Equal(t, catalog.PlanPro, plan)
	assert.Equal(t, catalog.BillingPeriodYearly, period)

	for _, bad := range []string{"", "premium", "platinum_monthly", "premium_weekly", "com.fintly.premium.monthly"} {
		_, _, ok := billing.ParsePackageIdentifier(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}
