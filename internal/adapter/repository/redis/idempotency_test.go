package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIdempotencyCheckAndSet_FirstRequest(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, existing, err := store.CheckAndSet(ctx, "req-1", nil, time.Hour)
	require.NoError(t, err)
	require.False(t, exists)
	require.Nil(t, existing)
}

func TestIdempotencyCheckAndSet_Replay(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	response := []byte(`{"transaction_id":"t-1"}`)

	_, _, err := store.CheckAndSet(ctx, "req-1", nil, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "req-1", response, time.Hour))

	exists, existing, err := store.CheckAndSet(ctx, "req-1", nil, time.Hour)
	require.NoError(t, err)
	require.True(t, exists)

	if !bytes.Equal(existing, response) {
		t.Fatalf("replay returned %s, want %s", existing, response)
	}
}

func TestIdempotencyCheckAndSet_PlaceholderBlocksSecondClaim(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "req-1", nil, time.Hour)
	require.NoError(t, err)

	exists, existing, err := store.CheckAndSet(ctx, "req-1", nil, time.Hour)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, []byte("processing"), existing)
}
