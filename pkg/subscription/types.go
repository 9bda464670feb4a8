package subscription

import (
	"strings"

	"github.com/fintly/billingkit/pkg/catalog"
)

// Status represents the current state of a subscription. The value set
// mirrors the backend's authoritative record, which in turn follows the
// payment providers' lifecycle vocabulary.
type Status string

const (
	StatusActive            Status = "active"
	StatusTrialing          Status = "trialing"
	StatusCanceled          Status = "canceled"
	StatusPastDue           Status = "past_due"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusUnpaid            Status = "unpaid"
)

// ParseStatus converts a raw backend status string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(raw))
	switch s {
	case StatusActive, StatusTrialing, StatusCanceled, StatusPastDue,
		StatusIncomplete, StatusIncompleteExpired, StatusUnpaid:
		return s, nil
	default:
		return "", ErrUnknownStatus
	}
}

// Terminal reports whether the status ends the current subscription cycle.
// The record itself persists for history; only the cycle is over.
func (s Status) Terminal() bool {
	return s == StatusCanceled || s == StatusUnpaid || s == StatusIncompleteExpired
}

// GrantsPaidAccess reports whether plan benefits apply in this status.
// Past-due retains access while the provider retries payment; terminal and
// incomplete states do not.
func (s Status) GrantsPaidAccess() bool {
	return s == StatusActive || s == StatusTrialing || s == StatusPastDue
}

// DeviceInfo identifies the device initiating a trial, forwarded to the
// backend for its one-trial-per-user bookkeeping.
type DeviceInfo struct {
	DeviceID   string
	Platform   string
	DeviceName string
}

// TrialRequest is the payload for starting a trial.
type TrialRequest struct {
	Plan   catalog.PlanID
	Device DeviceInfo
}
