// Package httpapi exposes the subscription engine over HTTP for the web
// dashboard: read endpoints for the subscription record, plan catalog, and
// entitlements, and mutation endpoints for trial, checkout, cancellation,
// reactivation, plan change, and restore.
//
// Authentication stays outside the package: a SessionResolver turns each
// request into the caller's subscription service and reconciler. Every
// response uses a {data, error} envelope; domain errors map to stable error
// codes the dashboard can branch on.
package httpapi
