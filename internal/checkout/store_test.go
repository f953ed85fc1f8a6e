package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := &Session{ID: "s1", Step: StepCustomer, State: StateActive}
	require.NoError(t, store.Put(ctx, sess, time.Minute))
	assert.Equal(t, int64(1), sess.Version)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.Version, got.Version)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreVersionConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := &Session{ID: "s1", State: StateActive}
	require.NoError(t, store.Put(ctx, first, time.Minute))

	// Two readers pick up version 1.
	a, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	b, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	// First writer wins, the stale one conflicts.
	a.Step = StepOrder
	require.NoError(t, store.Put(ctx, a, time.Minute))
	b.Step = StepPayment
	assert.ErrorIs(t, store.Put(ctx, b, time.Minute), ErrVersionConflict)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StepOrder, got.Step)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Now()
	store.now = func() time.Time { return base }

	sess := &Session{ID: "s1", State: StateActive}
	require.NoError(t, store.Put(ctx, sess, 3*time.Second))

	// Still readable within the TTL.
	_, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(4 * time.Second) }
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// An expired entry no longer guards its slot: a fresh write at
	// version zero is accepted.
	fresh := &Session{ID: "s1", State: StateActive}
	assert.NoError(t, store.Put(ctx, fresh, time.Minute))
}

func TestMemoryStorePurge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Now()
	store.now = func() time.Time { return base }

	require.NoError(t, store.Put(ctx, &Session{ID: "old"}, time.Second))
	require.NoError(t, store.Put(ctx, &Session{ID: "live"}, time.Hour))

	store.purge(base.Add(time.Minute))

	store.mu.Lock()
	_, oldKept := store.entries["old"]
	_, liveKept := store.entries["live"]
	store.mu.Unlock()
	assert.False(t, oldKept)
	assert.True(t, liveKept)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, &Session{ID: "s1"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "s1"))
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting a missing id is a no-op.
	assert.NoError(t, store.Delete(ctx, "s1"))
}
