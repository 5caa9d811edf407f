package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

const (
	defaultTimeout = 5 * time.Second
	replayTTL      = 24 * time.Hour
	claimTTL       = 30 * time.Second
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// PurchaseReplayStore records purchase results by idempotency key so a
// retried request returns the first outcome instead of buying twice.
// Key format: purchase:<actor_id>:<sweet_id>:<idempotency_key>
//
// A key moves from a pending claim (quantity only, short TTL) to the
// finished record (quantity and result, 24h TTL).
type PurchaseReplayStore struct {
	client   *redis.Client
	ttl      time.Duration
	claimTTL time.Duration
}

// NewPurchaseReplayStore creates a PurchaseReplayStore wrapping the given Redis client.
func NewPurchaseReplayStore(client *redis.Client) *PurchaseReplayStore {
	return &PurchaseReplayStore{client: client, ttl: replayTTL, claimTTL: claimTTL}
}

// Claim reserves key with SETNX. When another request already holds it the
// stored record is returned instead.
func (s *PurchaseReplayStore) Claim(ctx context.Context, key string, quantity int) (*domain.PurchaseRecord, bool, error) {
	pending, err := json.Marshal(domain.PurchaseRecord{Quantity: quantity})
	if err != nil {
		return nil, false, fmt.Errorf("replay encode: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, s.key(key), pending, s.claimTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("replay claim: %w", err)
	}
	if claimed {
		return nil, true, nil
	}

	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("replay get: %w", err)
	}

	var record domain.PurchaseRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, fmt.Errorf("replay decode: %w", err)
	}
	return &record, false, nil
}

// Complete overwrites the claim with the finished purchase.
func (s *PurchaseReplayStore) Complete(ctx context.Context, key string, record domain.PurchaseRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("replay encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("replay set: %w", err)
	}
	return nil
}

// Release deletes the claim so the key can be retried.
func (s *PurchaseReplayStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("replay release: %w", err)
	}
	return nil
}

// Ping satisfies the readiness check contract.
func (s *PurchaseReplayStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *PurchaseReplayStore) key(k string) string {
	return "purchase:" + k
}
