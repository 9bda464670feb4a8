package backendapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintly/billingkit/pkg/backendapi"
	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/subscription"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...backendapi.Option) *backendapi.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := backendapi.New(backendapi.Config{BaseURL: srv.URL}, opts...)
	require.NoError(t, err)
	return client
}

func TestNew_ValidatesBaseURL(t *testing.T) {
	t.Parallel()

	_, err := backendapi.New(backendapi.Config{BaseURL: "ftp://api.example.com"})
	assert.ErrorIs(t, err, backendapi.ErrInvalidBaseURL)

	_, err = backendapi.New(backendapi.Config{BaseURL: "https://"})
	assert.ErrorIs(t, err, backendapi.ErrInvalidBaseURL)

	_, err = backendapi.New(backendapi.Config{BaseURL: "https://api.example.com/v1/billing"})
	assert.NoError(t, err)
}

func TestClient_CurrentSubscription(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	trialEnd := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/current-subscription", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"userId":      userID.String(),
			"plan":        "premium",
			"status":      "trialing",
			"platform":    "none",
			"trialEndsAt": trialEnd,
			"canUseTrial": false,
		})
	}), backendapi.WithStaticToken("tok-1"))

	sub, err := client.CurrentSubscription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, userID, sub.UserID)
	assert.Equal(t, catalog.PlanPremium, sub.Plan)
	assert.Equal(t, subscription.StatusTrialing, sub.Status)
	assert.Equal(t, billing.PlatformNone, sub.Platform)
	require.NotNil(t, sub.TrialEndsAt)
	assert.Equal(t, trialEnd, *sub.TrialEndsAt)
	assert.False(t, sub.CanUseTrial)
}

func TestClient_CurrentSubscription_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"userId": uuid.NewString(),
			"plan":   "premium",
			"status": "paused",
		})
	}))

	_, err := client.CurrentSubscription(context.Background())
	assert.ErrorIs(t, err, backendapi.ErrUnexpectedResponse)
	assert.ErrorIs(t, err, subscription.ErrUnknownStatus)
}

func TestClient_CurrentSubscription_RejectsUnknownPlatform(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"userId":   uuid.NewString(),
			"plan":     "premium",
			"status":   "active",
			"platform": "carrier_billing",
		})
	}))

	_, err := client.CurrentSubscription(context.Background())
	assert.ErrorIs(t, err, backendapi.ErrUnexpectedResponse)
	assert.ErrorIs(t, err, billing.ErrUnknownPlatform)
}

func TestClient_Plans_PriceShapes(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plans", r.URL.Path)

		// One plan per price shape the backend has ever emitted: absent,
		// per-period object, and the legacy bare monthly amount.
		_, _ = w.Write([]byte(`[
			{"id": "free", "name": "Free", "limits": {"budgets": 2}},
			{"id": "premium", "name": "Premium", "limits": {"budgets": 10},
			 "price": {"monthly": 499, "yearly": 4990, "currency": "USD"}, "trialDays": 7},
			{"id": "pro", "name": "Pro", "limits": {"budgets": -1},
			 "price": 999, "trialDays": 7}
		]`))
	}))

	plans, err := client.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 3)

	assert.Equal(t, catalog.PriceKindNone, plans[0].Price.Kind)

	assert.Equal(t, catalog.PriceKindRecurring, plans[1].Price.Kind)
	monthly, err := plans[1].Price.Amount(catalog.BillingPeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, catalog.Money{Amount: 499, Currency: "USD"}, monthly)
	yearly, err := plans[1].Price.Amount(catalog.BillingPeriodYearly)
	require.NoError(t, err)
	assert.Equal(t, int64(4990), yearly.Amount)

	assert.Equal(t, catalog.PriceKindRecurring, plans[2].Price.Kind)
	monthly, err = plans[2].Price.Amount(catalog.BillingPeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, int64(999), monthly.Amount)
	assert.Equal(t, "USD", monthly.Currency, "legacy shape defaults the currency")
}

func TestClient_StartTrial(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/start-trial", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{
			"plan":       "premium",
			"deviceId":   "dev-1",
			"platform":   "web",
			"deviceName": "Chrome",
		}, body)

		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.StartTrial(context.Background(), subscription.TrialRequest{
		Plan:   catalog.PlanPremium,
		Device: subscription.DeviceInfo{DeviceID: "dev-1", Platform: "web", DeviceName: "Chrome"},
	})
	require.NoError(t, err)
}

func TestClient_ChangePlan_OmitsEmptyPeriod(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pro", body["plan"])
		// Trial-time changes carry no period.
		assert.NotContains(t, body, "billingPeriod")

		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.ChangePlan(context.Background(), catalog.PlanPro, ""))
}

func TestClient_CheckoutSessionLifecycle(t *testing.T) {
	t.Parallel()

	expires := time.Now().UTC().Add(30 * time.Minute).Truncate(time.Second)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/checkout-session":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "premium", body["plan"])
			assert.Equal(t, "yearly", body["billingPeriod"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"url":       "https://pay.example.com/cs_1",
				"sessionId": "cs_1",
				"expiresAt": expires,
			})
		case "/checkout-session/cs_1":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status":        "complete",
				"paymentStatus": "paid",
				"subscription":  map[string]any{"plan": "premium"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	ctx := context.Background()

	session, err := client.CreateCheckoutSession(ctx, catalog.PlanPremium, catalog.BillingPeriodYearly)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_1", session.URL)
	assert.Equal(t, expires, session.ExpiresAt)

	status, err := client.CheckoutSession(ctx, "cs_1")
	require.NoError(t, err)
	assert.True(t, status.Settled())
}

func TestClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			"known code maps to domain sentinel",
			http.StatusConflict,
			`{"error": {"code": "trial_already_used", "message": "trial already consumed"}}`,
			subscription.ErrTrialAlreadyUsed,
		},
		{
			"unknown plan code",
			http.StatusUnprocessableEntity,
			`{"error": {"code": "plan_not_found", "message": "no such plan"}}`,
			catalog.ErrPlanNotFound,
		},
		{
			"unknown code falls back to request failure",
			http.StatusConflict,
			`{"error": {"code": "teapot", "message": "nope"}}`,
			backendapi.ErrRequestFailed,
		},
		{
			"unauthorized without envelope",
			http.StatusUnauthorized,
			``,
			backendapi.ErrUnauthorized,
		},
		{
			"not found without envelope",
			http.StatusNotFound,
			``,
			backendapi.ErrNotFound,
		},
		{
			"server error",
			http.StatusBadGateway,
			``,
			backendapi.ErrRequestFailed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			err := client.Cancel(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_TokenSourceFailureAbortsRequest(t *testing.T) {
	t.Parallel()

	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), backendapi.WithTokenSource(func(ctx context.Context) (string, error) {
		return "", context.DeadlineExceeded
	}))

	err := client.Cancel(context.Background())
	assert.ErrorIs(t, err, backendapi.ErrRequestFailed)
	assert.False(t, called, "no request must leave the client without credentials")
}
