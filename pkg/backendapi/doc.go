// Package backendapi is the typed HTTP client for the backend subscription
// API. It implements subscription.Backend and billing.CheckoutAPI, so the
// rest of the kit never sees HTTP.
//
// The backend is authoritative for every record this client returns. Wire
// shapes are translated to domain types at this boundary, including the
// legacy price field that may arrive as a bare number instead of the
// per-period object.
package backendapi
