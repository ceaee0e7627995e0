package snapshot

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrSnapshotNotFound covers missing, expired and foreign-owner lookups
// alike: a caller probing someone else's key learns nothing.
var ErrSnapshotNotFound = errors.New("checkout snapshot not found")

// Item is one staged cart line. Snapshots exist because the payment page
// redirect cannot carry a full cart in session metadata; the cart is staged
// server-side and referenced by key.
type Item struct {
	StoryID    uint   `json:"story_id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Snapshot is an immutable copy of cart contents at checkout time.
type Snapshot struct {
	Key       string            `json:"key"`
	OwnerID   uint              `json:"owner_id"`
	Items     []Item            `json:"items"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store stages snapshots for the duration of one checkout attempt.
// Implementations delete expired snapshots outright; there is no soft flag.
type Store interface {
	// Create persists an immutable snapshot and returns its key.
	Create(ctx context.Context, ownerID uint, items []Item, metadata map[string]string) (string, error)
	// Get returns the snapshot iff key is live and ownerID matches the creator.
	Get(ctx context.Context, key string, ownerID uint) (*Snapshot, error)
}

// newKey builds an unpredictable snapshot key from the owner, the time and
// 16 random bytes.
func newKey(ownerID uint, now time.Time) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("snapshot key: %w", err)
	}
	return fmt.Sprintf("snap_%d_%d_%s", ownerID, now.Unix(), hex.EncodeToString(buf)), nil
}
