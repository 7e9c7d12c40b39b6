package auth

import (
	"context"
	"log/slog"
	"time"

	"tome/pkg/platform/circuit"
)

// BreakerRevocationList wraps a RevocationList so that a sustained Redis
// outage does not take authentication down with it. Isolated check failures
// still surface (and reject the request); once the breaker opens, checks
// fail open and tokens are treated as not revoked until Redis answers again.
// The inner list is probed on every call, so the breaker closes as soon as
// Redis recovers.
type BreakerRevocationList struct {
	inner   RevocationList
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakerRevocationList(inner RevocationList, logger *slog.Logger) *BreakerRevocationList {
	return &BreakerRevocationList{
		inner:   inner,
		breaker: circuit.New("token-revocation", circuit.WithFailureThreshold(5)),
		logger:  logger,
	}
}

func (b *BreakerRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return b.inner.Revoke(ctx, jti, ttl)
}

func (b *BreakerRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := b.inner.IsRevoked(ctx, jti)
	if err != nil {
		failOpen, change := b.breaker.RecordFailure()
		if change.Opened {
			b.logger.ErrorContext(ctx, "revocation store unavailable, failing open",
				"breaker", b.breaker.Name(),
				"error", err,
			)
		}
		if failOpen {
			return false, nil
		}
		return false, err
	}

	if _, change := b.breaker.RecordSuccess(); change.Closed {
		b.logger.InfoContext(ctx, "revocation store recovered",
			"breaker", b.breaker.Name(),
		)
	}
	return revoked, nil
}
