package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/reconcile"
	"github.com/fintly/billingkit/pkg/subscription"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) CreateCheckoutSession(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, plan, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *mockSessions) CheckoutSession(ctx context.Context, sessionID string) (*billing.SessionStatus, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SessionStatus), args.Error(1)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Refresh(ctx context.Context) (*subscription.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockRefresher) RestorePurchases(ctx context.Context) {
	m.Called(ctx)
}

func activeSub() *subscription.Subscription {
	return &subscription.Subscription{
		UserID: uuid.New(),
		Plan:   catalog.PlanPremium,
		Status: subscription.StatusActive,
	}
}

func TestReconciler_SyncCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("applies settled session via refetch", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_1").
			Return(&billing.SessionStatus{Status: "complete", PaymentStatus: "paid"}, nil)

		subs := &mockRefresher{}
		subs.On("Refresh", mock.Anything).Return(activeSub(), nil)

		r := reconcile.New(sessions, subs)

		assert.True(t, r.SyncCheckoutSession(context.Background(), "cs_1"))
		subs.AssertExpectations(t)
	})

	t.Run("open session leaves state untouched", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_2").
			Return(&billing.SessionStatus{Status: "open", PaymentStatus: "unpaid"}, nil)

		subs := &mockRefresher{}
		r := reconcile.New(sessions, subs)

		assert.False(t, r.SyncCheckoutSession(context.Background(), "cs_2"))
		subs.AssertNotCalled(t, "Refresh", mock.Anything)
	})

	t.Run("complete but unpaid is not settled", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_3").
			Return(&billing.SessionStatus{Status: "complete", PaymentStatus: "unpaid"}, nil)

		subs := &mockRefresher{}
		r := reconcile.New(sessions, subs)

		assert.False(t, r.SyncCheckoutSession(context.Background(), "cs_3"))
	})

	t.Run("poll failure is swallowed", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_down").
			Return(nil, errors.New("backend down"))

		subs := &mockRefresher{}
		r := reconcile.New(sessions, subs)

		assert.False(t, r.SyncCheckoutSession(context.Background(), "cs_down"))
		subs.AssertNotCalled(t, "Refresh", mock.Anything)
	})

	t.Run("refresh failure after settlement is swallowed", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_refresh").
			Return(&billing.SessionStatus{Status: "complete", PaymentStatus: "paid"}, nil)

		subs := &mockRefresher{}
		subs.On("Refresh", mock.Anything).Return(nil, errors.New("offline"))

		r := reconcile.New(sessions, subs)

		assert.False(t, r.SyncCheckoutSession(context.Background(), "cs_refresh"))
	})

	t.Run("repeated sync of a settled session is idempotent", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_4").
			Return(&billing.SessionStatus{Status: "complete", PaymentStatus: "paid"}, nil)

		subs := &mockRefresher{}
		subs.On("Refresh", mock.Anything).Return(activeSub(), nil)

		r := reconcile.New(sessions, subs)

		for i := 0; i < 3; i++ {
			assert.True(t, r.SyncCheckoutSession(context.Background(), "cs_4"))
		}
		subs.AssertNumberOfCalls(t, "Refresh", 3)
	})
}

func TestReconciler_AwaitCheckoutSettlement(t *testing.T) {
	t.Parallel()

	t.Run("settles after pending polls", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_5").
			Return(&billing.SessionStatus{Status: "open", PaymentStatus: "unpaid"}, nil).Twice()
		sessions.On("CheckoutSession", mock.Anything, "cs_5").
			Return(&billing.SessionStatus{Status: "complete", PaymentStatus: "paid"}, nil).Once()

		subs := &mockRefresher{}
		subs.On("Refresh", mock.Anything).Return(activeSub(), nil)

		r := reconcile.New(sessions, subs,
			reconcile.WithBackoff(reconcile.FixedBackoff{Interval: time.Millisecond}),
			reconcile.WithMaxAttempts(5))

		require.NoError(t, r.AwaitCheckoutSettlement(context.Background(), "cs_5"))
		sessions.AssertNumberOfCalls(t, "CheckoutSession", 3)
	})

	t.Run("gives up when the polling budget runs out", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_6").
			Return(&billing.SessionStatus{Status: "open", PaymentStatus: "unpaid"}, nil)

		subs := &mockRefresher{}
		r := reconcile.New(sessions, subs,
			reconcile.WithBackoff(reconcile.FixedBackoff{Interval: time.Millisecond}),
			reconcile.WithMaxAttempts(3))

		err := r.AwaitCheckoutSettlement(context.Background(), "cs_6")
		assert.ErrorIs(t, err, reconcile.ErrSessionNotSettled)
		sessions.AssertNumberOfCalls(t, "CheckoutSession", 3)
		subs.AssertNotCalled(t, "Refresh", mock.Anything)
	})

	t.Run("stops early on a terminal session", func(t *testing.T) {
		t.Parallel()

		for _, state := range []string{"expired", "failed", "canceled"} {
			sessions := &mockSessions{}
			sessions.On("CheckoutSession", mock.Anything, "cs_7").
				Return(&billing.SessionStatus{Status: state, PaymentStatus: "unpaid"}, nil)

			subs := &mockRefresher{}
			r := reconcile.New(sessions, subs,
				reconcile.WithBackoff(reconcile.FixedBackoff{Interval: time.Millisecond}),
				reconcile.WithMaxAttempts(10))

			err := r.AwaitCheckoutSettlement(context.Background(), "cs_7")
			assert.ErrorIs(t, err, reconcile.ErrSessionNotSettled, state)
			sessions.AssertNumberOfCalls(t, "CheckoutSession", 1)
		}
	})

	t.Run("swallows refresh failure after settlement", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_10").
			Return(&billing.SessionStatus{Status: "complete", PaymentStatus: "paid"}, nil)

		subs := &mockRefresher{}
		subs.On("Refresh", mock.Anything).Return(nil, errors.New("offline"))

		r := reconcile.New(sessions, subs,
			reconcile.WithBackoff(reconcile.FixedBackoff{Interval: time.Millisecond}),
			reconcile.WithMaxAttempts(3))

		require.NoError(t, r.AwaitCheckoutSettlement(context.Background(), "cs_10"))
	})

	t.Run("transient poll failures count as attempts", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_8").
			Return(nil, errors.New("502")).Once()
		sessions.On("CheckoutSession", mock.Anything, "cs_8").
			Return(&billing.SessionStatus{Status: "complete", PaymentStatus: "paid"}, nil).Once()

		subs := &mockRefresher{}
		subs.On("Refresh", mock.Anything).Return(activeSub(), nil)

		r := reconcile.New(sessions, subs,
			reconcile.WithBackoff(reconcile.FixedBackoff{Interval: time.Millisecond}),
			reconcile.WithMaxAttempts(3))

		require.NoError(t, r.AwaitCheckoutSettlement(context.Background(), "cs_8"))
	})

	t.Run("honours context cancellation between polls", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessions{}
		sessions.On("CheckoutSession", mock.Anything, "cs_9").
			Return(&billing.SessionStatus{Status: "open", PaymentStatus: "unpaid"}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		subs := &mockRefresher{}
		r := reconcile.New(sessions, subs,
			reconcile.WithBackoff(reconcile.FixedBackoff{Interval: time.Hour}),
			reconcile.WithMaxAttempts(5))

		err := r.AwaitCheckoutSettlement(ctx, "cs_9")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReconciler_SyncOnForeground(t *testing.T) {
	t.Parallel()

	t.Run("restores then refreshes", func(t *testing.T) {
		t.Parallel()

		subs := &mockRefresher{}
		subs.On("RestorePurchases", mock.Anything).Return()
		subs.On("Refresh", mock.Anything).Return(activeSub(), nil)

		r := reconcile.New(&mockSessions{}, subs)
		r.SyncOnForeground(context.Background())

		subs.AssertExpectations(t)
	})

	t.Run("absorbs refresh failures", func(t *testing.T) {
		t.Parallel()

		subs := &mockRefresher{}
		subs.On("RestorePurchases", mock.Anything).Return()
		subs.On("Refresh", mock.Anything).Return(nil, errors.New("offline"))

		r := reconcile.New(&mockSessions{}, subs)

		// Must not panic; eventual consistency arrives with the next sync.
		r.SyncOnForeground(context.Background())
	})
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	t.Run("exponential grows and caps", func(t *testing.T) {
		t.Parallel()

		b := reconcile.ExponentialBackoff{
			InitialInterval: time.Second,
			MaxInterval:     4 * time.Second,
			Multiplier:      2,
		}

		assert.Equal(t, time.Duration(0), b.NextInterval(0))
		assert.Equal(t, time.Second, b.NextInterval(1))
		assert.Equal(t, 2*time.Second, b.NextInterval(2))
		assert.Equal(t, 4*time.Second, b.NextInterval(3))
		assert.Equal(t, 4*time.Second, b.NextInterval(10), "capped at MaxInterval")
	})

	t.Run("jitter stays within bounds", func(t *testing.T) {
		t.Parallel()

		b := reconcile.ExponentialBackoff{
			InitialInterval: time.Second,
			MaxInterval:     time.Minute,
			Multiplier:      2,
			JitterFactor:    0.5,
		}

		for i := 0; i < 100; i++ {
			d := b.NextInterval(1)
			assert.GreaterOrEqual(t, d, 500*time.Millisecond)
			assert.LessOrEqual(t, d, 1500*time.Millisecond)
		}
	})

	t.Run("fixed is constant", func(t *testing.T) {
		t.Parallel()

		b := reconcile.FixedBackoff{Interval: 3 * time.Second}
		assert.Equal(t, 3*time.Second, b.NextInterval(1))
		assert.Equal(t, 3*time.Second, b.NextInterval(42))
	})
}
