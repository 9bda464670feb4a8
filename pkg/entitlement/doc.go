// Package entitlement derives per-feature permissions and quotas from the
// active plan. The resolver is a pure function so it can be unit tested
// without a live subscription store, and so the same projection is reused
// by the store facade, the HTTP surface, and the mobile bridges.
package entitlement
