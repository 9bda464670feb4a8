package backendapi

import "errors"

var (
	ErrInvalidBaseURL     = errors.New("invalid backend API base URL")
	ErrRequestFailed      = errors.New("backend API request failed")
	ErrUnauthorized       = errors.New("backend API rejected the credentials")
	ErrNotFound           = errors.New("backend API resource not found")
	ErrUnexpectedResponse = errors.New("backend API returned an unexpected response")
)
