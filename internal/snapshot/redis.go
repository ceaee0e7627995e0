package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots in Redis and leans on key expiry for the
// retention window: after TTL the snapshot is gone, reconciled or not.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Println("[Snapshot] Redis connection established")
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Create(ctx context.Context, ownerID uint, items []Item, metadata map[string]string) (string, error) {
	key, err := newKey(ownerID, time.Now())
	if err != nil {
		return "", err
	}
	snap := Snapshot{
		Key:       key,
		OwnerID:   ownerID,
		Items:     items,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, storageKey(key), data, s.ttl).Err(); err != nil {
		return "", err
	}
	return key, nil
}

func (s *RedisStore) Get(ctx context.Context, key string, ownerID uint) (*Snapshot, error) {
	data, err := s.client.Get(ctx, storageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.OwnerID != ownerID {
		return nil, ErrSnapshotNotFound
	}
	return &snap, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func storageKey(key string) string {
	return "checkout:" + key
}
