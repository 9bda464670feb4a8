package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/subscription"
)

// envelope is the standard JSON response structure.
type envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

// errorDetail contains error information.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	status, code := classify(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Error: &errorDetail{Code: code, Message: err.Error()},
	})
}

// classify maps a domain error to an HTTP status and a stable error code.
// Specific sentinels are checked before their ErrInvalidState root so the
// dashboard can branch on the code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, subscription.ErrTrialAlreadyUsed):
		return http.StatusConflict, "trial_already_used"
	case errors.Is(err, subscription.ErrTrialNotActive):
		return http.StatusConflict, "trial_not_active"
	case errors.Is(err, subscription.ErrTrialNotOffered):
		return http.StatusConflict, "trial_not_offered"
	case errors.Is(err, subscription.ErrNotOnFreePlan):
		return http.StatusConflict, "not_on_free_plan"
	case errors.Is(err, subscription.ErrAlreadySubscribed):
		return http.StatusConflict, "already_subscribed"
	case errors.Is(err, subscription.ErrNotPaidSubscription):
		return http.StatusConflict, "not_paid_subscription"
	case errors.Is(err, subscription.ErrCancellationPending):
		return http.StatusConflict, "cancellation_pending"
	case errors.Is(err, subscription.ErrNoCancellationToUndo):
		return http.StatusConflict, "no_cancellation_to_undo"
	case errors.Is(err, subscription.ErrSubscriptionLapsed):
		return http.StatusConflict, "subscription_lapsed"
	case errors.Is(err, subscription.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, catalog.ErrPlanNotFound):
		return http.StatusNotFound, "plan_not_found"
	case errors.Is(err, billing.ErrFreePlanNotPurchasable):
		return http.StatusUnprocessableEntity, "free_plan_not_purchasable"
	case errors.Is(err, billing.ErrInvalidBillingPeriod):
		return http.StatusUnprocessableEntity, "invalid_billing_period"
	case errors.Is(err, subscription.ErrBackendFailure):
		return http.StatusBadGateway, "backend_unavailable"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
