package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fintly/billingkit/pkg/billing"
	"github.com/fintly/billingkit/pkg/catalog"
)

// RedisStore is a SnapshotStore backed by Redis, shared across app restarts
// and across the dashboard's server instances.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "billingkit:sub:" key prefix.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithSnapshotTTL bounds how long a snapshot outlives its last refresh.
// Zero keeps snapshots until overwritten.
func WithSnapshotTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStore creates a Redis-backed snapshot store.
// Panics if client is nil to fail fast during composition.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("subscription: redis client is required")
	}

	s := &RedisStore{
		client: client,
		prefix: "billingkit:sub:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshotRecord is the stored JSON shape. Kept separate from Subscription
// so the cache format does not silently change with the domain struct.
type snapshotRecord struct {
	UserID                 uuid.UUID  `json:"user_id"`
	Plan                   string     `json:"plan"`
	Status                 string     `json:"status"`
	Platform               string     `json:"platform"`
	ExternalCustomerID     string     `json:"external_customer_id,omitempty"`
	ExternalSubscriptionID string     `json:"external_subscription_id,omitempty"`
	CurrentPeriodStart     time.Time  `json:"current_period_start"`
	CurrentPeriodEnd       time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd      bool       `json:"cancel_at_period_end"`
	TrialEndsAt            *time.Time `json:"trial_ends_at,omitempty"`
	CanUseTrial            bool       `json:"can_use_trial"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (s *RedisStore) key(userID uuid.UUID) string {
	return s.prefix + userID.String()
}

func (s *RedisStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	var rec snapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		// A corrupt snapshot is treated as absent; the next refresh
		// overwrites it.
		return nil, ErrSnapshotNotFound
	}

	return &Subscription{
		UserID:                 rec.UserID,
		Plan:                   catalog.PlanID(rec.Plan),
		Status:                 Status(rec.Status),
		Platform:               billing.Platform(rec.Platform),
		ExternalCustomerID:     rec.ExternalCustomerID,
		ExternalSubscriptionID: rec.ExternalSubscriptionID,
		CurrentPeriodStart:     rec.CurrentPeriodStart,
		CurrentPeriodEnd:       rec.CurrentPeriodEnd,
		CancelAtPeriodEnd:      rec.CancelAtPeriodEnd,
		TrialEndsAt:            rec.TrialEndsAt,
		CanUseTrial:            rec.CanUseTrial,
		CreatedAt:              rec.CreatedAt,
		UpdatedAt:              rec.UpdatedAt,
	}, nil
}

func (s *RedisStore) Save(ctx context.Context, sub *Subscription) error {
	rec := snapshotRecord{
		UserID:                 sub.UserID,
		Plan:                   string(sub.Plan),
		Status:                 string(sub.Status),
		Platform:               string(sub.Platform),
		ExternalCustomerID:     sub.ExternalCustomerID,
		ExternalSubscriptionID: sub.ExternalSubscriptionID,
		CurrentPeriodStart:     sub.CurrentPeriodStart,
		CurrentPeriodEnd:       sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:      sub.CancelAtPeriodEnd,
		TrialEndsAt:            sub.TrialEndsAt,
		CanUseTrial:            sub.CanUseTrial,
		CreatedAt:              sub.CreatedAt,
		UpdatedAt:              sub.UpdatedAt,
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.key(sub.UserID), raw, s.ttl).Err()
}
