package reconcile

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy calculates the delay before the next session poll.
// Implementations must be safe for concurrent use.
type BackoffStrategy interface {
	// NextInterval returns the delay before the given attempt.
	// Attempt starts at 1 for the first retry.
	NextInterval(attempt int) time.Duration
}

// ExponentialBackoff implements exponential backoff with jitter.
// Jitter spreads polls from many clients returning from checkout at once.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

// NextInterval returns min(InitialInterval * Multiplier^(attempt-1) * (1 ± JitterFactor), MaxInterval).
func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial == 0 {
		initial = 2 * time.Second
	}

	max := e.MaxInterval
	if max == 0 {
		max = 15 * time.Second
	}

	multiplier := e.Multiplier
	if multiplier == 0 {
		multiplier = 1.5
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))

	// Zero jitter stays deterministic, which tests rely on.
	if e.JitterFactor > 0 {
		randomJitter := (rand.Float64()*2 - 1) * e.JitterFactor
		interval = interval * (1 + randomJitter)
	}

	if interval > float64(max) {
		interval = float64(max)
	}

	return time.Duration(interval)
}

// FixedBackoff polls at a constant interval.
type FixedBackoff struct {
	Interval time.Duration
}

// NextInterval always returns the same interval regardless of attempt number.
func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// DefaultBackoffStrategy returns the polling schedule used after a checkout
// redirect: quick first checks while the user is still looking at the app,
// slowing down as settlement drags.
func DefaultBackoffStrategy() BackoffStrategy {
	return ExponentialBackoff{
		InitialInterval: 2 * time.Second,
		MaxInterval:     15 * time.Second,
		Multiplier:      1.5,
		JitterFactor:    0.1,
	}
}
