// Package billing abstracts the two payment paths behind one Provider
// strategy: a checkout-redirect flow (web/Android, hosted payment page
// confirmed by session polling) and a native in-app-purchase flow (iOS,
// store-mediated sheet confirmed by receipt).
//
// The provider is selected once at composition time from the runtime
// platform. Call sites never branch on platform.
//
// Every purchase resolves to the Outcome trichotomy: succeeded, declined,
// failed. Declined covers the user dismissing the native sheet or refusing
// the pre-redirect disclosure and is not an error.
package billing
