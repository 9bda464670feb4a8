package httpapi

import (
	"time"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/subscription"
)

type subscriptionResponse struct {
	Plan               catalog.PlanID      `json:"plan"`
	Status             subscription.Status `json:"status"`
	Platform           billing.Platform    `json:"platform"`
	CurrentPeriodStart *time.Time          `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   *time.Time          `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd  bool                `json:"cancelAtPeriodEnd"`
	TrialEndsAt        *time.Time          `json:"trialEndsAt,omitempty"`
	TrialDaysRemaining int                 `json:"trialDaysRemaining"`
	CanUseTrial        bool                `json:"canUseTrial"`
}

func newSubscriptionResponse(sub *subscription.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		Plan:               sub.Plan,
		Status:             sub.Status,
		Platform:           sub.Platform,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		TrialEndsAt:        sub.TrialEndsAt,
		TrialDaysRemaining: sub.TrialDaysRemaining(),
		CanUseTrial:        sub.CanUseTrial,
	}
	if !sub.CurrentPeriodStart.IsZero() {
		t := sub.CurrentPeriodStart
		resp.CurrentPeriodStart = &t
	}
	if !sub.CurrentPeriodEnd.IsZero() {
		t := sub.CurrentPeriodEnd
		resp.CurrentPeriodEnd = &t
	}
	return resp
}

type moneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type priceResponse struct {
	Monthly moneyResponse `json:"monthly"`
	Yearly  moneyResponse `json:"yearly"`
}

type planResponse struct {
	ID          catalog.PlanID             `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Limits      map[catalog.Resource]int64 `json:"limits"`
	Features    []catalog.Feature          `json:"features,omitempty"`
	Display     []string                   `json:"display,omitempty"`
	Price       *priceResponse             `json:"price,omitempty"`
	TrialDays   int                        `json:"trialDays,omitempty"`
}

func newPlanResponse(plan catalog.Plan) planResponse {
	resp := planResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		Description: plan.Description,
		Limits:      plan.Limits,
		Features:    plan.Features,
		Display:     plan.Display,
		TrialDays:   plan.TrialDays,
	}
	if plan.Price.Kind == catalog.PriceKindRecurring {
		resp.Price = &priceResponse{
			Monthly: moneyResponse{Amount: plan.Price.Monthly.Amount, Currency: plan.Price.Monthly.Currency},
			Yearly:  moneyResponse{Amount: plan.Price.Yearly.Amount, Currency: plan.Price.Yearly.Currency},
		}
	}
	return resp
}

type startTrialRequest struct {
	Plan       string `json:"plan"`
	DeviceID   string `json:"deviceId"`
	Platform   string `json:"platform"`
	DeviceName string `json:"deviceName"`
}

type purchaseRequest struct {
	Plan          string `json:"plan"`
	BillingPeriod string `json:"billingPeriod"`
}

type changePlanRequest struct {
	Plan          string `json:"plan"`
	BillingPeriod string `json:"billingPeriod"`
}

type purchaseResponse struct {
	Outcome     billing.Outcome `json:"outcome"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
}

type syncResponse struct {
	Applied      bool                 `json:"applied"`
	Subscription subscriptionResponse `json:"subscription"`
}
