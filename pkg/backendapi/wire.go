package backendapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/subscription"
)

// subscriptionWire is the backend's JSON shape for the subscription record.
type subscriptionWire struct {
	UserID                 string     `json:"userId"`
	Plan                   string     `json:"plan"`
	Status                 string     `json:"status"`
	Platform               string     `json:"platform"`
	ExternalCustomerID     string     `json:"externalCustomerId"`
	ExternalSubscriptionID string     `json:"externalSubscriptionId"`
	CurrentPeriodStart     time.Time  `json:"currentPeriodStart"`
	CurrentPeriodEnd       time.Time  `json:"currentPeriodEnd"`
	CancelAtPeriodEnd      bool       `json:"cancelAtPeriodEnd"`
	TrialEndsAt            *time.Time `json:"trialEndsAt"`
	CanUseTrial            bool       `json:"canUseTrial"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

func (w subscriptionWire) toDomain() (*subscription.Subscription, error) {
	userID, err := uuid.Parse(w.UserID)
	if err != nil {
		return nil, errors.Join(ErrUnexpectedResponse, err)
	}

	plan, err := catalog.ParsePlanID(w.Plan)
	if err != nil {
		return nil, errors.Join(ErrUnexpectedResponse, err)
	}

	status, err := subscription.ParseStatus(w.Status)
	if err != nil {
		return nil, errors.Join(ErrUnexpectedResponse, err)
	}

	platform := billing.PlatformNone
	if w.Platform != "" {
		platform, err = billing.ParsePlatform(w.Platform)
		if err != nil {
			return nil, errors.Join(ErrUnexpectedResponse, err)
		}
	}

	sub := &subscription.Subscription{
		UserID:                 userID,
		Plan:                   plan,
		Status:                 status,
		Platform:               platform,
		ExternalCustomerID:     w.ExternalCustomerID,
		ExternalSubscriptionID: w.ExternalSubscriptionID,
		CurrentPeriodStart:     w.CurrentPeriodStart,
		CurrentPeriodEnd:       w.CurrentPeriodEnd,
		CancelAtPeriodEnd:      w.CancelAtPeriodEnd,
		CanUseTrial:            w.CanUseTrial,
		CreatedAt:              w.CreatedAt,
		UpdatedAt:              w.UpdatedAt,
	}
	if w.TrialEndsAt != nil {
		t := w.TrialEndsAt.UTC()
		sub.TrialEndsAt = &t
	}

	return sub, nil
}

// priceWire tolerates the two shapes the backend emits: the current object
// form with per-period amounts, and the legacy bare number that only ever
// meant a monthly amount. The shape is resolved here, once; downstream code
// only sees the catalog's tagged union.
type priceWire struct {
	Monthly  int64
	Yearly   int64
	Currency string
}

func (p *priceWire) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '{' {
		var obj struct {
			Monthly  int64  `json:"monthly"`
			Yearly   int64  `json:"yearly"`
			Currency string `json:"currency"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		p.Monthly = obj.Monthly
		p.Yearly = obj.Yearly
		p.Currency = obj.Currency
		return nil
	}

	var amount int64
	if err := json.Unmarshal(data, &amount); err != nil {
		return err
	}
	p.Monthly = amount
	return nil
}

func (p priceWire) toDomain() catalog.Price {
	if p.Monthly == 0 && p.Yearly == 0 {
		return catalog.FreePrice()
	}

	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}

	return catalog.RecurringPrice(
		catalog.Money{Amount: p.Monthly, Currency: currency},
		catalog.Money{Amount: p.Yearly, Currency: currency},
	)
}

type planWire struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Limits      map[string]int64 `json:"limits"`
	Features    []string         `json:"features"`
	Display     []string         `json:"display"`
	Price       priceWire        `json:"price"`
	TrialDays   int              `json:"trialDays"`
}

func (w planWire) toDomain() (catalog.Plan, error) {
	id, err := catalog.ParsePlanID(w.ID)
	if err != nil {
		return catalog.Plan{}, errors.Join(ErrUnexpectedResponse, err)
	}

	limits := make(map[catalog.Resource]int64, len(w.Limits))
	for res, limit := range w.Limits {
		limits[catalog.Resource(res)] = limit
	}

	features := make([]catalog.Feature, 0, len(w.Features))
	for _, f := range w.Features {
		features = append(features, catalog.Feature(f))
	}

	return catalog.Plan{
		ID:          id,
		Name:        w.Name,
		Description: w.Description,
		Limits:      limits,
		Features:    features,
		Display:     w.Display,
		Price:       w.Price.toDomain(),
		TrialDays:   w.TrialDays,
	}, nil
}

type startTrialRequest struct {
	Plan       string `json:"plan"`
	DeviceID   string `json:"deviceId"`
	Platform   string `json:"platform"`
	DeviceName string `json:"deviceName"`
}

type changePlanRequest struct {
	Plan          string `json:"plan"`
	BillingPeriod string `json:"billingPeriod,omitempty"`
}

type checkoutSessionRequest struct {
	Plan          string `json:"plan"`
	BillingPeriod string `json:"billingPeriod"`
}

type checkoutSessionWire struct {
	URL       string    `json:"url"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// sessionStatusWire also carries the updated subscription inline, which is
// deliberately ignored: state is only ever applied by refetching the
// canonical record.
type sessionStatusWire struct {
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Subscription  json.RawMessage `json:"subscription"`
}

// errorWire is the backend's error envelope.
type errorWire struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
