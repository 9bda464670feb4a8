package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Plan records a plan identifier under the key "plan".
func Plan(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("plan", id)
}

// SessionID records a checkout session identifier under the key "session_id".
func SessionID(id string) slog.Attr {
	return slog.String("session_id", id)
}

// Platform records the billing platform under the key "platform".
func Platform(p any) slog.Attr {
	return slog.Any("platform", p)
}

// Status records a subscription status under the key "status".
func Status(s any) slog.Attr {
	return slog.Any("status", s)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Attempt records a retry attempt number under the key "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}
