package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wanty-app/wishfeed/internal/cache"
	"github.com/wanty-app/wishfeed/internal/model"
	"github.com/wanty-app/wishfeed/internal/repository"
	"github.com/wanty-app/wishfeed/internal/service"
)

// Compares session browsing with a resumable cursor against stateless
// browsing that restarts from the top of the pool on every visit.
func main() {
	ctx := context.Background()

	db := must(gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}))
	sqlDB := must(db.DB())
	// a second pool connection would see a separate empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	mustDo(db.AutoMigrate(&model.User{}, &model.Wish{}))

	const (
		ownerCount    = 200
		wishesPerUser = 50
		viewerCount   = 100
		visitsPerUser = 5
		stepsPerVisit = 40
	)

	fmt.Println("Seeding pool...")
	owners := make([]model.User, ownerCount)
	for i := range owners {
		owners[i] = model.User{ID: fmt.Sprintf("owner_%d", i), Username: fmt.Sprintf("owner_%d", i)}
	}
	mustDo(db.CreateInBatches(&owners, 500).Error)

	base := time.Now().Add(-24 * time.Hour)
	wishes := make([]model.Wish, 0, ownerCount*wishesPerUser)
	for i := range owners {
		for j := 0; j < wishesPerUser; j++ {
			wishes = append(wishes, model.Wish{
				ID:        uuid.NewString(),
				OwnerID:   owners[i].ID,
				Name:      fmt.Sprintf("wish %d/%d", i, j),
				CreatedAt: base.Add(time.Duration(i*wishesPerUser+j) * time.Second),
			})
		}
	}
	mustDo(db.CreateInBatches(&wishes, 500).Error)
	fmt.Printf("Pool ready: %d wishes from %d owners\n", len(wishes), ownerCount)

	mr := must(miniredis.Run())
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	feed := service.NewFeedSelector(repository.NewWishRepository(db))
	cursor := cache.NewCursorStore(client, time.Hour)

	viewers := make([]string, viewerCount)
	for i := range viewers {
		viewers[i] = fmt.Sprintf("viewer_%d", i)
	}

	resumed := runResumed(ctx, feed, cursor, viewers, visitsPerUser, stepsPerVisit)
	stateless := runStateless(ctx, feed, viewers, visitsPerUser, stepsPerVisit)

	fmt.Printf("\nFeed step latency (%d viewers x %d visits x %d steps)\n", viewerCount, visitsPerUser, stepsPerVisit)
	fmt.Printf("%-18s avg=%v p95=%v p99=%v fresh_wishes=%d repeats=%d\n",
		"Cursor resume", avg(resumed.durations), pct(resumed.durations, 0.95), pct(resumed.durations, 0.99),
		resumed.fresh, resumed.repeats)
	fmt.Printf("%-18s avg=%v p95=%v p99=%v fresh_wishes=%d repeats=%d\n",
		"Restart each visit", avg(stateless.durations), pct(stateless.durations, 0.95), pct(stateless.durations, 0.99),
		stateless.fresh, stateless.repeats)
}

type benchResult struct {
	durations []time.Duration
	fresh     int
	repeats   int
}

func runResumed(ctx context.Context, feed *service.FeedSelector, cursor *cache.CursorStore, viewers []string, visits, steps int) benchResult {
	var res benchResult
	seen := map[string]map[string]bool{}
	for _, v := range viewers {
		seen[v] = map[string]bool{}
	}
	rnd := rand.New(rand.NewSource(7))
	for visit := 0; visit < visits; visit++ {
		for _, v := range viewers {
			offset := must(cursor.Get(ctx, v))
			n := steps/2 + rnd.Intn(steps)
			for s := 0; s < n; s++ {
				start := time.Now()
				wish, err := feed.Next(ctx, v, offset)
				mustDo(err)
				res.durations = append(res.durations, time.Since(start))
				if wish == nil {
					break
				}
				if seen[v][wish.ID] {
					res.repeats++
				} else {
					seen[v][wish.ID] = true
					res.fresh++
				}
				offset = must(cursor.Advance(ctx, v))
			}
		}
	}
	return res
}

func runStateless(ctx context.Context, feed *service.FeedSelector, viewers []string, visits, steps int) benchResult {
	var res benchResult
	seen := map[string]map[string]bool{}
	for _, v := range viewers {
		seen[v] = map[string]bool{}
	}
	rnd := rand.New(rand.NewSource(7))
	for visit := 0; visit < visits; visit++ {
		for _, v := range viewers {
			offset := 0
			n := steps/2 + rnd.Intn(steps)
			for s := 0; s < n; s++ {
				start := time.Now()
				wish, err := feed.Next(ctx, v, offset)
				mustDo(err)
				res.durations = append(res.durations, time.Since(start))
				if wish == nil {
					break
				}
				if seen[v][wish.ID] {
					res.repeats++
				} else {
					seen[v][wish.ID] = true
					res.fresh++
				}
				offset++
			}
		}
	}
	return res
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
