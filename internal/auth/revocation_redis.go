package auth

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var isRevokedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "tome_token_revocation_check_duration_ms",
	Help:    "Latency of token revocation checks in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const revokedTokenKeyPrefix = "trl:jti:"

// RevocationList tracks revoked token JTIs until their natural expiry.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationList is the production RevocationList. Revocation state is
// shared across instances; the key TTL matches the token lifetime so entries
// clean themselves up.
type RedisRevocationList struct {
	client *redis.Client
}

func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

// Revoke marks a token as revoked. Uses SET with expiry; key existence is
// what matters, the value is a marker.
func (t *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	return t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether the token is on the list. A missing key means not
// revoked (or already expired past its natural lifetime).
func (t *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	start := time.Now()
	defer func() {
		isRevokedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
