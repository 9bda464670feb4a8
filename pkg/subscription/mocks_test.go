package subscription_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/subscription"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) CurrentSubscription(ctx context.Context) (*subscription.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockBackend) Plans(ctx context.Context) ([]catalog.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Plan), args.Error(1)
}

func (m *mockBackend) StartTrial(ctx context.Context, req subscription.TrialRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockBackend) Cancel(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBackend) Reactivate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBackend) ChangePlan(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) error {
	return m.Called(ctx, plan, period).Error(0)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Platform() billing.Platform {
	return m.Called().Get(0).(billing.Platform)
}

func (m *mockProvider) Purchase(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*billing.PurchaseResult, error) {
	args := m.Called(ctx, plan, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PurchaseResult), args.Error(1)
}

func (m *mockProvider) Restore(ctx context.Context) (*billing.CustomerInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CustomerInfo), args.Error(1)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(context.Background(), catalog.NewInMemSource(catalog.DefaultPlans()...))
	require.NoError(t, err)
	return cat
}
