// Package reconcile converges local subscription state with the backend
// after settlement happens out of process.
//
// The checkout platform hands the user to an external browser, so the app
// never observes payment directly; it polls the session until the backend
// reports it settled, then refetches the subscription record. The native
// platform settles in-sheet but still drifts on renewals, refunds, and
// family-sharing changes, so every app foreground runs the same cheap
// restore-and-refresh pass.
//
// All paths are idempotent: state is applied only by refetching the
// canonical record, so a sync racing a server-side webhook is harmless.
package reconcile
