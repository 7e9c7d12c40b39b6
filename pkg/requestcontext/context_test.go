package requestcontext

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tome/pkg/domain"
)

func TestRequireUserID_FailsWhenUnset(t *testing.T) {
	_, err := RequireUserID(context.Background())
	require.ErrorIs(t, err, ErrNoIdentity)
}

func TestRequireUserID_RejectsNilUUID(t *testing.T) {
	// A zero-value identity must never be treated as a valid scope.
	ctx := context.WithValue(context.Background(), ContextKeyUserID, id.UserID{})
	_, err := RequireUserID(ctx)
	require.ErrorIs(t, err, ErrNoIdentity)
}

func TestUserID_ZeroWhenUnset(t *testing.T) {
	assert.True(t, UserID(context.Background()).IsNil())
}

func TestWithUserID_RoundTrip(t *testing.T) {
	userID := id.NewUserID()
	ctx := WithUserID(context.Background(), userID)

	got, err := RequireUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

// TestNestedScopeRestoresOuterIdentity verifies that binding a different
// identity in a derived context never disturbs the outer scope: after the
// inner section finishes, reads against the outer context still see the
// outer identity.
func TestNestedScopeRestoresOuterIdentity(t *testing.T) {
	outer := id.NewUserID()
	inner := id.NewUserID()

	outerCtx := WithUserID(context.Background(), outer)
	innerCtx := WithUserID(outerCtx, inner)

	got, err := RequireUserID(innerCtx)
	require.NoError(t, err)
	assert.Equal(t, inner, got)

	got, err = RequireUserID(outerCtx)
	require.NoError(t, err)
	assert.Equal(t, outer, got, "outer scope must be untouched after nesting")
}

// TestNoCrossTaskLeakage launches many concurrent tasks, each binding its
// own identity then reading it back across a suspension point. Every task
// must observe exactly its own identity regardless of interleaving.
func TestNoCrossTaskLeakage(t *testing.T) {
	const tasks = 128

	var wg sync.WaitGroup
	errs := make(chan error, tasks)

	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			want := id.NewUserID()
			ctx := WithUserID(context.Background(), want)

			// Force interleaving with other goroutines.
			time.Sleep(time.Millisecond)

			got, err := RequireUserID(ctx)
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				t.Errorf("task observed foreign identity: got %s want %s", got, want)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNow_FallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before.Add(-time.Second)))
}

func TestNow_UsesInjectedTime(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := WithTime(context.Background(), fixed)
	assert.Equal(t, fixed, Now(ctx))
}

func TestClientMetadata(t *testing.T) {
	ctx := WithClientMetadata(context.Background(), "203.0.113.9", "curl/8.5.0")
	assert.Equal(t, "203.0.113.9", ClientIP(ctx))
	assert.Equal(t, "curl/8.5.0", UserAgent(ctx))
}
