package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fintly/billingkit/pkg/catalog"
	"github.com/fintly/billingkit/pkg/reconcile"
	"github.com/fintly/billingkit/pkg/subscription"
)

// ErrUnauthenticated is returned by a SessionResolver when the request
// carries no valid caller identity.
var ErrUnauthenticated = errors.New("httpapi: unauthenticated request")

var errBadRequest = errors.New("httpapi: malformed request body")

// Session bundles the per-caller collaborators the handlers work with.
type Session struct {
	Subscriptions subscription.Service
	Reconciler    *reconcile.Reconciler
}

// SessionResolver authenticates a request and returns the caller's session.
// Authentication itself lives outside this package; the resolver is the seam.
type SessionResolver func(r *http.Request) (*Session, error)

// Handler is the HTTP surface the web dashboard consumes.
type Handler struct {
	resolve SessionResolver
	log     *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// New creates the dashboard API router.
// Panics if resolve is nil to fail fast during composition.
func New(resolve SessionResolver, opts ...HandlerOption) http.Handler {
	if resolve == nil {
		panic("httpapi: SessionResolver is required")
	}

	h := &Handler{
		resolve: resolve,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/billing", func(r chi.Router) {
		r.Get("/subscription", h.currentSubscription)
		r.Post("/subscription/refresh", h.refreshSubscription)
		r.Get("/plans", h.listPlans)
		r.Get("/entitlements", h.entitlements)

		r.Post("/trial", h.startTrial)
		r.Post("/checkout", h.purchase)
		r.Post("/checkout/{sessionID}/sync", h.syncCheckoutSession)
		r.Post("/cancel", h.cancel)
		r.Post("/reactivate", h.reactivate)
		r.Post("/change-plan", h.changePlan)
		r.Post("/restore", h.restore)
	})

	return r
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := h.resolve(r)
	if err != nil {
		respondError(w, errors.Join(ErrUnauthenticated, err))
		return nil, false
	}
	return sess, true
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func (h *Handler) currentSubscription(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	respond(w, http.StatusOK, newSubscriptionResponse(sess.Subscriptions.Current(r.Context())))
}

func (h *Handler) refreshSubscription(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sub, err := sess.Subscriptions.Refresh(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, newSubscriptionResponse(sub))
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	plans := sess.Subscriptions.Catalog().Plans()
	resp := make([]planResponse, 0, len(plans))
	for _, plan := range plans {
		resp = append(resp, newPlanResponse(plan))
	}

	respond(w, http.StatusOK, resp)
}

func (h *Handler) entitlements(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	respond(w, http.StatusOK, sess.Subscriptions.Entitlements(r.Context()))
}

func (h *Handler) startTrial(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req startTrialRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	plan, err := catalog.ParsePlanID(req.Plan)
	if err != nil {
		respondError(w, err)
		return
	}

	device := subscription.DeviceInfo{
		DeviceID:   req.DeviceID,
		Platform:   req.Platform,
		DeviceName: req.DeviceName,
	}
	if err := sess.Subscriptions.StartTrial(r.Context(), plan, device); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, newSubscriptionResponse(sess.Subscriptions.Current(r.Context())))
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	plan, err := catalog.ParsePlanID(req.Plan)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := sess.Subscriptions.Purchase(r.Context(), plan, catalog.BillingPeriod(req.BillingPeriod))
	if err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, purchaseResponse{
		Outcome:     result.Outcome,
		CheckoutURL: result.CheckoutURL,
		SessionID:   result.SessionID,
	})
}

func (h *Handler) syncCheckoutSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "sessionID")

	// Reconciliation failures are absorbed by the reconciler: the dashboard
	// just sees an unapplied sync and the current record, and retries later.
	applied := sess.Reconciler.SyncCheckoutSession(r.Context(), sessionID)

	respond(w, http.StatusOK, syncResponse{
		Applied:      applied,
		Subscription: newSubscriptionResponse(sess.Subscriptions.Current(r.Context())),
	})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Subscriptions.CancelSubscription(r.Context()); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, newSubscriptionResponse(sess.Subscriptions.Current(r.Context())))
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Subscriptions.ReactivateSubscription(r.Context()); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, newSubscriptionResponse(sess.Subscriptions.Current(r.Context())))
}

func (h *Handler) changePlan(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req changePlanRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	plan, err := catalog.ParsePlanID(req.Plan)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := sess.Subscriptions.ChangePlan(r.Context(), plan, catalog.BillingPeriod(req.BillingPeriod)); err != nil {
		respondError(w, err)
		return
	}

	respond(w, http.StatusOK, newSubscriptionResponse(sess.Subscriptions.Current(r.Context())))
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.Subscriptions.RestorePurchases(r.Context())

	respond(w, http.StatusOK, newSubscriptionResponse(sess.Subscriptions.Current(r.Context())))
}
