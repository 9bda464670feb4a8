// Package subscription is the core of the billing kit: the per-user
// subscription record, the trial manager, the snapshot cache, and the
// Service facade every consumer goes through.
//
// # State machine
//
// The status field moves through a fixed set of transitions:
//
//	free/active --StartTrial--> trialing
//	trialing --ChangePlan--> trialing (new plan, same trial window)
//	trialing --CancelSubscription--> active on free
//	trialing --(trial window elapses)--> server-authoritative successor
//	active --CancelSubscription--> active (cancel_at_period_end=true)
//	active(cancel pending) --ReactivateSubscription--> active
//	active(cancel pending) --(period end)--> canceled
//	active --ChangePlan--> active (new plan, provider-prorated)
//	paid --(payment failure)--> past_due --> canceled | unpaid
//
// Transitions marked server-authoritative are never fired locally; they are
// observed through reconciliation. In particular, what happens when a trial
// window elapses (conversion to paid or reversion to free) is decided by the
// backend and its providers, and the engine deliberately encodes no policy
// for it.
//
// # Mutation pattern
//
// Every mutating method validates locally, delegates, then refetches the
// canonical record. Local state is never patched from a mutation's return
// value, so a partial failure can never leave the snapshot ahead of or
// behind the backend.
package subscription
