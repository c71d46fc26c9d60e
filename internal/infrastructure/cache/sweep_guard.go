package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SweepGuard prevents overlapping sweep runs across instances. Acquire
// returns true when this instance wins the lease for the given run key;
// a false result means another instance already owns it.
type SweepGuard interface {
	Acquire(ctx context.Context, runKey string, ttl time.Duration) (bool, error)
}

// RedisSweepGuard implements SweepGuard on Redis. Suitable for
// multi-instance deployments where sweeps must run at most once per
// interval across the whole fleet.
type RedisSweepGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSweepGuard creates a guard backed by a fresh Redis client
func NewRedisSweepGuard(addr, password string, db int) (*RedisSweepGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSweepGuard{client: client, keyPrefix: "sweep:guard:"}, nil
}

// NewRedisSweepGuardWithClient creates a guard sharing an existing client
func NewRedisSweepGuardWithClient(client *redis.Client) *RedisSweepGuard {
	return &RedisSweepGuard{client: client, keyPrefix: "sweep:guard:"}
}

// Acquire takes the lease for a run key with SETNX. The TTL bounds how
// long a crashed holder blocks subsequent runs.
func (g *RedisSweepGuard) Acquire(ctx context.Context, runKey string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+runKey, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep guard: %w", err)
	}
	return ok, nil
}

// Close closes the Redis client
func (g *RedisSweepGuard) Close() error {
	return g.client.Close()
}

// InMemorySweepGuard implements SweepGuard for single-instance deployments
// and tests.
type InMemorySweepGuard struct {
	mu     sync.Mutex
	leases map[string]time.Time
}

// NewInMemorySweepGuard creates an in-process guard
func NewInMemorySweepGuard() *InMemorySweepGuard {
	return &InMemorySweepGuard{leases: make(map[string]time.Time)}
}

// Acquire takes the lease if it is free or expired
func (g *InMemorySweepGuard) Acquire(ctx context.Context, runKey string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if expiry, held := g.leases[runKey]; held && now.Before(expiry) {
		return false, nil
	}
	g.leases[runKey] = now.Add(ttl)
	return true, nil
}

var _ SweepGuard = (*RedisSweepGuard)(nil)
var _ SweepGuard = (*InMemorySweepGuard)(nil)
