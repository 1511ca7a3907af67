package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingKeyPrefix = "notify:pending:"

// PendingEvent is one approval waiting to be folded into an aggregated
// notification for a wish owner.
type PendingEvent struct {
	WishID       string    `json:"wish_id"`
	WishName     string    `json:"wish_name"`
	ActorID      string    `json:"actor_id"`
	ActorSummary string    `json:"actor_summary"`
	At           time.Time `json:"at"`
}

// NotificationAggregator batches approval events per wish owner in a redis
// list. Enqueue is a single server-side script, so the post-insert pending
// count is computed atomically: in a burst of concurrent likes exactly one
// caller observes a count of 1 and triggers the aggregated send. Entries carry
// their own insert timestamp and stop being visible once older than the
// window; there is no background flush.
type NotificationAggregator struct {
	rdb    *redis.Client
	window time.Duration
}

// enqueueScript drops entries that fell out of the window, pushes the new one,
// refreshes the key TTL and returns the resulting length. Entries are
// "<unix-milli>|<json>", pushed in time order, so expired ones form a prefix.
var enqueueScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local items = redis.call('LRANGE', key, 0, -1)
local stale = 0
for i = 1, #items do
  local sep = string.find(items[i], '|', 1, true)
  local ts = sep and tonumber(string.sub(items[i], 1, sep - 1))
  if ts and now - ts >= window then
    stale = stale + 1
  else
    break
  end
end
if stale > 0 then
  redis.call('LTRIM', key, stale, -1)
end
redis.call('RPUSH', key, ARGV[3])
redis.call('PEXPIRE', key, window)
return redis.call('LLEN', key)
`)

func NewNotificationAggregator(rdb *redis.Client, window time.Duration) *NotificationAggregator {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &NotificationAggregator{rdb: rdb, window: window}
}

func pendingKey(ownerID string) string { return pendingKeyPrefix + ownerID }

// Enqueue appends an event for the owner and returns how many events are now
// pending. A return of 1 means the caller holds the trigger for the aggregated
// send.
func (a *NotificationAggregator) Enqueue(ctx context.Context, ownerID string, ev PendingEvent) (int, error) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("aggregator enqueue: %w", err)
	}
	entry := strconv.FormatInt(ev.At.UnixMilli(), 10) + "|" + string(payload)
	n, err := enqueueScript.Run(ctx, a.rdb,
		[]string{pendingKey(ownerID)},
		ev.At.UnixMilli(), a.window.Milliseconds(), entry,
	).Int()
	if err != nil {
		return 0, fmt.Errorf("aggregator enqueue: %w", err)
	}
	return n, nil
}

// Peek returns the owner's pending events still inside the window, trimming
// expired ones from the list as a side effect of the read.
func (a *NotificationAggregator) Peek(ctx context.Context, ownerID string) ([]PendingEvent, error) {
	key := pendingKey(ownerID)
	items, err := a.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("aggregator peek: %w", err)
	}
	now := time.Now()
	stale := 0
	events := make([]PendingEvent, 0, len(items))
	for _, item := range items {
		ts, payload, ok := splitEntry(item)
		if !ok {
			stale++
			continue
		}
		if now.Sub(time.UnixMilli(ts)) >= a.window {
			stale++
			continue
		}
		var ev PendingEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			stale++
			continue
		}
		events = append(events, ev)
	}
	if stale > 0 {
		if stale == len(items) {
			_ = a.rdb.Del(ctx, key).Err()
		} else {
			_ = a.rdb.LTrim(ctx, key, int64(stale), -1).Err()
		}
	}
	return events, nil
}

// Clear drops the owner's pending batch once the aggregated notification has
// been handled.
func (a *NotificationAggregator) Clear(ctx context.Context, ownerID string) error {
	if err := a.rdb.Del(ctx, pendingKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("aggregator clear: %w", err)
	}
	return nil
}

func splitEntry(item string) (int64, string, bool) {
	sep := strings.IndexByte(item, '|')
	if sep < 1 {
		return 0, "", false
	}
	ts, err := strconv.ParseInt(item[:sep], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return ts, item[sep+1:], true
}
