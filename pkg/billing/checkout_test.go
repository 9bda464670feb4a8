package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
)

type mockCheckoutAPI struct {
	mock.Mock
}

func (m *mockCheckoutAPI) CreateCheckoutSession(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, plan, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *mockCheckoutAPI) CheckoutSession(ctx context.Context, sessionID string) (*billing.SessionStatus, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SessionStatus), args.Error(1)
}

func TestCheckoutProvider_Purchase(t *testing.T) {
	t.Parallel()

	t.Run("creates session and returns redirect URL", func(t *testing.T) {
		t.Parallel()

		api := &mockCheckoutAPI{}
		api.On("CreateCheckoutSession", mock.Anything, catalog.PlanPremium, catalog.BillingPeriodMonthly).
			Return(&billing.CheckoutSession{URL: "https://pay.example.com/cs_123", SessionID: "cs_123"}, nil)

		provider := billing.NewCheckoutProvider(api)

		result, err := provider.Purchase(context.Background(), catalog.PlanPremium, catalog.BillingPeriodMonthly)
		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeSucceeded, result.Outcome)
		assert.Equal(t, "https://pay.example.com/cs_123", result.CheckoutURL)
		assert.Equal(t, "cs_123", result.SessionID)
		api.AssertExpectations(t)
	})

	t.Run("declined disclosure is a no-op outcome, not an error", func(t *testing.T) {
		t.Parallel()

		api := &mockCheckoutAPI{}
		provider := billing.NewCheckoutProvider(api, billing.WithDisclosure(func(ctx context.Context) bool {
			return false
		}))

		result, err := provider.Purchase(context.Background(), catalog.PlanPremium, catalog.BillingPeriodYearly)
		require.NoError(t, err)
		assert.Equal(t, billing.OutcomeDeclined, result.Outcome)
		api.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects free plan before any network call", func(t *testing.T) {
		t.Parallel()

		api := &mockCheckoutAPI{}
		provider := billing.NewCheckoutProvider(api)

		_, err := provider.Purchase(context.Background(), catalog.PlanFree, catalog.BillingPeriodMonthly)
		assert.ErrorIs(t, err, billing.ErrFreePlanNotPurchasable)
		api.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown billing period", func(t *testing.T) {
		t.Parallel()

		provider := billing.NewCheckoutProvider(&mockCheckoutAPI{})

		_, err := provider.Purchase(context.Background(), catalog.PlanPro, catalog.BillingPeriod("weekly"))
		assert.ErrorIs(t, err, billing.ErrInvalidBillingPeriod)
	})

	t.Run("wraps backend failures", func(t *testing.T) {
		t.Parallel()

		api := &mockCheckoutAPI{}
		api.On("CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("boom"))

		provider := billing.NewCheckoutProvider(api)

		_, err := provider.Purchase(context.Background(), catalog.PlanPro, catalog.BillingPeriodMonthly)
		assert.ErrorIs(t, err, billing.ErrProviderFailure)
	})
}

func TestCheckoutProvider_Restore(t *testing.T) {
	t.Parallel()

	provider := billing.NewCheckoutProvider(&mockCheckoutAPI{})

	info, err := provider.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestSessionStatus_Settled(t *testing.T) {
	t.Parallel()

	assert.True(t, billing.SessionStatus{Status: "complete", PaymentStatus: "paid"}.Settled())
	assert.False(t, billing.SessionStatus{Status: "complete", PaymentStatus: "unpaid"}.Settled())
	assert.False(t, billing.SessionStatus{Status: "open", PaymentStatus: "paid"}.Settled())
	assert.False(t, billing.SessionStatus{Status: "expired", PaymentStatus: "unpaid"}.Settled())
}
