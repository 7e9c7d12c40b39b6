package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failureCountKeyPrefix = "lockout:fail:"
	lockedKeyPrefix       = "lockout:lock:"

	// Five failures inside the window lock the identifier out for the
	// lockout duration. Counters reset when the window passes quietly.
	lockoutThreshold = 5
	failureWindow    = 15 * time.Minute
	lockoutDuration  = 15 * time.Minute
)

// Lockout throttles credential guessing per login identifier. Failures
// accumulate per normalized email, not per account, so probing unknown
// emails is throttled the same as guessing real passwords.
type Lockout interface {
	IsLocked(ctx context.Context, identifier string) (bool, error)
	RecordFailure(ctx context.Context, identifier string) error
	Clear(ctx context.Context, identifier string) error
}

// RedisLockout is the production Lockout. State is shared across instances
// and expires on its own, so there is nothing to garbage-collect.
type RedisLockout struct {
	client *redis.Client
}

func NewRedisLockout(client *redis.Client) *RedisLockout {
	return &RedisLockout{client: client}
}

func (l *RedisLockout) IsLocked(ctx context.Context, identifier string) (bool, error) {
	_, err := l.client.Get(ctx, lockedKeyPrefix+identifier).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check lockout: %w", err)
	}
	return true, nil
}

// RecordFailure increments the failure counter and converts it into a lock
// once the threshold is reached. The first failure starts the window.
func (l *RedisLockout) RecordFailure(ctx context.Context, identifier string) error {
	count, err := l.client.Incr(ctx, failureCountKeyPrefix+identifier).Result()
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, failureCountKeyPrefix+identifier, failureWindow).Err(); err != nil {
			return fmt.Errorf("set failure window: %w", err)
		}
	}
	if count >= lockoutThreshold {
		if err := l.client.Set(ctx, lockedKeyPrefix+identifier, "1", lockoutDuration).Err(); err != nil {
			return fmt.Errorf("set lockout: %w", err)
		}
		return l.client.Del(ctx, failureCountKeyPrefix+identifier).Err()
	}
	return nil
}

func (l *RedisLockout) Clear(ctx context.Context, identifier string) error {
	return l.client.Del(ctx, failureCountKeyPrefix+identifier, lockedKeyPrefix+identifier).Err()
}
