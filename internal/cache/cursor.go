package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cursorKeyPrefix = "feed:cursor:"

// CursorStore keeps the per-viewer browsing offset in redis with a sliding
// expiry. The offset is the viewer's resume position in the shared wish pool;
// losing it is acceptable, losing points is not, so this store is best-effort
// from the coordinator's point of view.
type CursorStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCursorStore(rdb *redis.Client, ttl time.Duration) *CursorStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CursorStore{rdb: rdb, ttl: ttl}
}

func cursorKey(viewerID string) string { return cursorKeyPrefix + viewerID }

// Get returns the viewer's current offset, 0 when absent or expired.
func (s *CursorStore) Get(ctx context.Context, viewerID string) (int, error) {
	val, err := s.rdb.Get(ctx, cursorKey(viewerID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cursor get: %w", err)
	}
	return val, nil
}

// Advance atomically increments the offset and refreshes the expiry, returning
// the new value. Each approve/decline calls it exactly once.
func (s *CursorStore) Advance(ctx context.Context, viewerID string) (int, error) {
	key := cursorKey(viewerID)
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("cursor advance: %w", err)
	}
	return int(incr.Val()), nil
}

// Reset puts the viewer back at the start of the pool.
func (s *CursorStore) Reset(ctx context.Context, viewerID string) error {
	if err := s.rdb.Set(ctx, cursorKey(viewerID), 0, s.ttl).Err(); err != nil {
		return fmt.Errorf("cursor reset: %w", err)
	}
	return nil
}

// Clear removes the key entirely (session end).
func (s *CursorStore) Clear(ctx context.Context, viewerID string) error {
	if err := s.rdb.Del(ctx, cursorKey(viewerID)).Err(); err != nil {
		return fmt.Errorf("cursor clear: %w", err)
	}
	return nil
}
