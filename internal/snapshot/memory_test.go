package snapshot

import (
	"context"
	"strings"
	"testing"
	"time"

	"tokyolore/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []Item {
	return []Item{
		{StoryID: 1, Title: "Lantern Alley", PriceCents: 899, Quantity: 2},
		{StoryID: 2, Title: "Vending Machine Shrine", PriceCents: 1299, Quantity: 1},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(2*time.Hour, clk)

	key, err := store.Create(context.Background(), 7, testItems(), map[string]string{"source": "cart"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "snap_7_"))

	snap, err := store.Get(context.Background(), key, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), snap.OwnerID)
	assert.Equal(t, testItems(), snap.Items)
	assert.Equal(t, "cart", snap.Metadata["source"])
}

func TestMemoryStoreExpiry(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(2*time.Hour, clk)

	key, err := store.Create(context.Background(), 7, testItems(), nil)
	require.NoError(t, err)

	clk.Advance(2*time.Hour - time.Second)
	_, err = store.Get(context.Background(), key, 7)
	require.NoError(t, err)

	clk.Advance(time.Second)
	_, err = store.Get(context.Background(), key, 7)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMemoryStoreOwnerMismatchLooksLikeMissing(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(2*time.Hour, clk)

	key, err := store.Create(context.Background(), 7, testItems(), nil)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), key, 8)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMemoryStoreSnapshotIsImmutableCopy(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(2*time.Hour, clk)

	items := testItems()
	key, err := store.Create(context.Background(), 7, items, nil)
	require.NoError(t, err)

	items[0].PriceCents = 1 // caller mutates its slice after staging

	snap, err := store.Get(context.Background(), key, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(899), snap.Items[0].PriceCents)
}

func TestMemoryStoreKeysAreUnique(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(2*time.Hour, clk)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key, err := store.Create(context.Background(), 7, testItems(), nil)
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}
