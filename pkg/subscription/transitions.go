package subscription

import "slices"

// transition represents a status change.
type transition struct {
	From Status
	To   Status
}

// validTransitions lists every status change the engine expects to observe,
// whether driven by a local intent or reported by the backend. Transitions
// marked server-authoritative are never fired locally; they arrive through
// reconciliation (trial elapse, period end, payment failure escalation).
var validTransitions = map[transition]bool{
	{StatusActive, StatusTrialing}: true, // Free user started a trial

	{StatusTrialing, StatusActive}:   true, // Trial cancelled back to free, or converted (server-authoritative)
	{StatusTrialing, StatusCanceled}: true, // Server-authoritative
	{StatusTrialing, StatusPastDue}:  true, // Server-authoritative: conversion charge failed

	{StatusActive, StatusPastDue}:  true, // Server-authoritative: renewal payment failed
	{StatusActive, StatusCanceled}: true, // Server-authoritative: period end after cancelAtPeriodEnd

	{StatusPastDue, StatusActive}:   true, // Server-authoritative: payment recovered
	{StatusPastDue, StatusCanceled}: true, // Server-authoritative: retries exhausted
	{StatusPastDue, StatusUnpaid}:   true, // Server-authoritative: retries exhausted

	{StatusIncomplete, StatusActive}:            true, // First payment eventually settled
	{StatusIncomplete, StatusIncompleteExpired}: true, // First payment never settled

	{StatusCanceled, StatusActive}:          true, // New cycle after a terminal one
	{StatusUnpaid, StatusActive}:            true,
	{StatusIncompleteExpired, StatusActive}: true,
}

// CanTransition reports whether a status change is one the engine expects.
// Reconciliation applies the backend's record regardless (the backend is
// authoritative); an unexpected transition is logged as an anomaly, not
// rejected.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	return validTransitions[transition{from, to}]
}

// ValidNextStatuses returns all expected successor statuses, sorted for
// deterministic callers.
func ValidNextStatuses(from Status) []Status {
	targets := make([]Status, 0)
	for t := range validTransitions {
		if t.From == from {
			targets = append(targets, t.To)
		}
	}
	slices.Sort(targets)
	return targets
}
