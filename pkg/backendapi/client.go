package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/subscription"
)

// TokenSource supplies the bearer token for a request. Sessions rotate
// tokens, so the token is resolved per call rather than captured once.
type TokenSource func(ctx context.Context) (string, error)

// Client is the typed HTTP client for the backend subscription API.
// It implements subscription.Backend and billing.CheckoutAPI.
type Client struct {
	baseURL   *url.URL
	client    *http.Client
	tokens    TokenSource
	userAgent string
}

var (
	_ subscription.Backend = (*Client)(nil)
	_ billing.CheckoutAPI  = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, e.g. for custom transports
// or testing.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTokenSource sets the per-request bearer token provider.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithStaticToken sets a fixed bearer token.
func WithStaticToken(token string) Option {
	return func(c *Client) {
		c.tokens = func(context.Context) (string, error) {
			return token, nil
		}
	}
}

// New creates a backend API client from config.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidBaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidBaseURL)
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "billingkit/1.0"
	}

	c := &Client{
		baseURL: base,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CurrentSubscription fetches the canonical subscription record.
func (c *Client) CurrentSubscription(ctx context.Context) (*subscription.Subscription, error) {
	var wire subscriptionWire
	if err := c.get(ctx, "current-subscription", &wire); err != nil {
		return nil, err
	}
	return wire.toDomain()
}

// Plans fetches the server-side plan catalog.
func (c *Client) Plans(ctx context.Context) ([]catalog.Plan, error) {
	var wires []planWire
	if err := c.get(ctx, "plans", &wires); err != nil {
		return nil, err
	}

	plans := make([]catalog.Plan, 0, len(wires))
	for _, w := range wires {
		plan, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// StartTrial asks the backend to start the one-shot trial.
func (c *Client) StartTrial(ctx context.Context, req subscription.TrialRequest) error {
	body := startTrialRequest{
		Plan:       string(req.Plan),
		DeviceID:   req.Device.DeviceID,
		Platform:   req.Device.Platform,
		DeviceName: req.Device.DeviceName,
	}
	return c.post(ctx, "start-trial", body, nil)
}

// Cancel cancels the current subscription or trial.
func (c *Client) Cancel(ctx context.Context) error {
	return c.post(ctx, "cancel", nil, nil)
}

// Reactivate clears a pending cancellation.
func (c *Client) Reactivate(ctx context.Context) error {
	return c.post(ctx, "reactivate", nil, nil)
}

// ChangePlan switches the subscription to another plan. During a trial the
// period is empty and omitted from the payload.
func (c *Client) ChangePlan(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) error {
	body := changePlanRequest{
		Plan:          string(plan),
		BillingPeriod: string(period),
	}
	return c.post(ctx, "change-plan", body, nil)
}

// CreateCheckoutSession asks the backend for a hosted checkout session.
func (c *Client) CreateCheckoutSession(ctx context.Context, plan catalog.PlanID, period catalog.BillingPeriod) (*billing.CheckoutSession, error) {
	body := checkoutSessionRequest{
		Plan:          string(plan),
		BillingPeriod: string(period),
	}

	var wire checkoutSessionWire
	if err := c.post(ctx, "checkout-session", body, &wire); err != nil {
		return nil, err
	}

	return &billing.CheckoutSession{
		URL:       wire.URL,
		SessionID: wire.SessionID,
		ExpiresAt: wire.ExpiresAt,
	}, nil
}

// CheckoutSession fetches the current status of a checkout session.
func (c *Client) CheckoutSession(ctx context.Context, sessionID string) (*billing.SessionStatus, error) {
	var wire sessionStatusWire
	if err := c.get(ctx, "checkout-session/"+url.PathEscape(sessionID), &wire); err != nil {
		return nil, err
	}

	return &billing.SessionStatus{
		Status:        wire.Status,
		PaymentStatus: wire.PaymentStatus,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Join(ErrRequestFailed, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return errors.Join(ErrRequestFailed, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrUnexpectedResponse, err)
	}

	return nil
}

// decodeError maps a non-2xx response to a typed error. Known backend error
// codes map to the domain sentinels, so callers can use errors.Is without
// caring that the precondition was re-checked server-side.
func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var wire errorWire
	if err := json.Unmarshal(raw, &wire); err == nil && wire.Error.Code != "" {
		if mapped := mapErrorCode(wire.Error.Code); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, wire.Error.Message)
		}
		return fmt.Errorf("%w: %s %s (%s)", ErrRequestFailed, resp.Status, wire.Error.Message, wire.Error.Code)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %s", ErrRequestFailed, resp.Status)
	}
}

func mapErrorCode(code string) error {
	switch code {
	case "trial_already_used":
		return subscription.ErrTrialAlreadyUsed
	case "already_subscribed":
		return subscription.ErrAlreadySubscribed
	case "cancellation_pending":
		return subscription.ErrCancellationPending
	case "subscription_lapsed":
		return subscription.ErrSubscriptionLapsed
	case "plan_not_found":
		return catalog.ErrPlanNotFound
	default:
		return nil
	}
}
