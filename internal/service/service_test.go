package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wanty-app/wishfeed/internal/achievement"
	"github.com/wanty-app/wishfeed/internal/cache"
	"github.com/wanty-app/wishfeed/internal/model"
	"github.com/wanty-app/wishfeed/internal/repository"
)

type sentMessage struct {
	Recipient string
	Text      string
	Actions   []string
}

// fakeMessenger records outbound messages; Fail makes every send error.
type fakeMessenger struct {
	mu   sync.Mutex
	Sent []sentMessage
	Fail error
}

func (m *fakeMessenger) SendMessage(_ context.Context, recipientID, text string, actions []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.Sent = append(m.Sent, sentMessage{Recipient: recipientID, Text: text, Actions: actions})
	return nil
}

func (m *fakeMessenger) EditMessage(_ context.Context, recipientID, _, text string, actions []string) error {
	return m.SendMessage(context.Background(), recipientID, text, actions)
}

func (m *fakeMessenger) sentTo(recipient string) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.Sent {
		if s.Recipient == recipient {
			out = append(out, s)
		}
	}
	return out
}

type fixture struct {
	db          *gorm.DB
	redis       *miniredis.Miniredis
	client      *redis.Client
	messenger   *fakeMessenger
	users       repository.UserRepository
	wishes      repository.WishRepository
	progress    repository.ProgressRepository
	unlocks     repository.UnlockRepository
	engagements repository.EngagementRepository
	cursor      *cache.CursorStore
	aggregator  *cache.NotificationAggregator
	coordinator *Coordinator
	wishSvc     *WishService
	profile     *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Wish{},
		&model.EngagementRecord{},
		&model.UserProgress{},
		&model.AchievementUnlock{},
	))

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		db:          db,
		redis:       srv,
		client:      client,
		messenger:   &fakeMessenger{},
		users:       repository.NewUserRepository(db),
		wishes:      repository.NewWishRepository(db),
		progress:    repository.NewProgressRepository(db),
		unlocks:     repository.NewUnlockRepository(db),
		engagements: repository.NewEngagementRepository(db),
		cursor:      cache.NewCursorStore(client, time.Hour),
		aggregator:  cache.NewNotificationAggregator(client, 5*time.Minute),
	}
	engine := achievement.NewEngine()
	feed := NewFeedSelector(f.wishes)
	f.coordinator = NewCoordinator(db, f.users, f.progress, f.unlocks, f.engagements,
		feed, f.cursor, f.aggregator, engine, NewNotifier(f.messenger))
	f.wishSvc = NewWishService(db, f.users, f.wishes, f.progress, f.unlocks, engine)
	f.profile = NewProfileService(f.users, f.progress, f.unlocks, f.engagements, engine)
	return f
}

func (f *fixture) seedUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &model.User{ID: id, Username: id, Name: id}))
}

// seedPool creates n wishes owned by owner, in a fixed creation order.
func (f *fixture) seedPool(t *testing.T, owner string, n int) []*model.Wish {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*model.Wish, n)
	for i := 0; i < n; i++ {
		w := &model.Wish{
			ID:        fmt.Sprintf("%s-wish-%02d", owner, i),
			OwnerID:   owner,
			Name:      fmt.Sprintf("wish %d of %s", i, owner),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.wishes.Create(context.Background(), w))
		out[i] = w
	}
	return out
}

func TestApproveWritesLedgerAndAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "viewer")
	pool := f.seedPool(t, "owner", 3)

	res, err := f.coordinator.Approve(ctx, "viewer")
	require.NoError(t, err)
	require.NotNil(t, res.Recorded)
	require.Equal(t, model.EngagementApproved, res.Recorded.Kind)
	require.Equal(t, pool[0].ID, res.Recorded.WishID)
	require.Equal(t, 1, res.Offset)
	require.NotNil(t, res.Next)
	require.Equal(t, pool[1].ID, res.Next.ID)
	require.False(t, res.Degraded)

	ownerSnap, err := f.progress.Snapshot(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 1, ownerSnap.LikesReceived)
	require.Equal(t, PointsLikeReceived, ownerSnap.TotalPoints)

	viewerSnap, err := f.progress.Snapshot(ctx, "viewer")
	require.NoError(t, err)
	require.Equal(t, 1, viewerSnap.LikesGiven)
	require.Equal(t, 1, viewerSnap.WishesViewed)
	require.Equal(t, 1, viewerSnap.ConsecutiveActiveDays)
	require.Equal(t, PointsLikeGiven+PointsWishViewed, viewerSnap.TotalPoints)
}

func TestApproveNeverServesOwnWish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	f.seedPool(t, "alice", 2)
	f.seedPool(t, "bob", 2)

	for {
		res, err := f.coordinator.Approve(ctx, "alice")
		require.NoError(t, err)
		if res.Recorded != nil {
			require.NotEqual(t, "alice", res.Recorded.OwnerID)
		}
		if res.Exhausted {
			break
		}
	}
}

func TestPopularDreamerUnlocksExactlyOnce(t *testing.T) {
	// Scenario A: the 25th like unlocks popular_dreamer, points jump by 5+75
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "viewer")
	f.seedUser(t, "viewer2")
	f.seedPool(t, "owner", 2)

	require.NoError(t, f.db.Create(&model.UserProgress{
		ID: "p-owner", UserID: "owner", LikesReceived: 24, TotalPoints: 120,
	}).Error)

	_, err := f.coordinator.Approve(ctx, "viewer")
	require.NoError(t, err)

	snap, err := f.progress.Snapshot(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 25, snap.LikesReceived)
	require.Equal(t, 120+PointsLikeReceived+75, snap.TotalPoints)

	unlocked, err := f.unlocks.ListIDs(ctx, "owner")
	require.NoError(t, err)
	require.True(t, unlocked["popular_dreamer"])

	// a 26th like must not re-award
	_, err = f.coordinator.Approve(ctx, "viewer2")
	require.NoError(t, err)

	snap, err = f.progress.Snapshot(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 26, snap.LikesReceived)
	require.Equal(t, 120+2*PointsLikeReceived+75, snap.TotalPoints)

	var cnt int64
	require.NoError(t, f.db.Model(&model.AchievementUnlock{}).
		Where("user_id = ? AND achievement_id = ?", "owner", "popular_dreamer").
		Count(&cnt).Error)
	require.EqualValues(t, 1, cnt)
}

func TestDeclineSkipsOwnerAndNotification(t *testing.T) {
	// Scenario B: decline at offset 3 moves the cursor to 4 and shows wish 4
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "viewer")
	pool := f.seedPool(t, "owner", 6)

	for i := 0; i < 3; i++ {
		_, err := f.cursor.Advance(ctx, "viewer")
		require.NoError(t, err)
	}

	res, err := f.coordinator.Decline(ctx, "viewer")
	require.NoError(t, err)
	require.Equal(t, model.EngagementDeclined, res.Recorded.Kind)
	require.Equal(t, pool[3].ID, res.Recorded.WishID)
	require.Equal(t, 4, res.Offset)
	require.Equal(t, pool[4].ID, res.Next.ID)

	// no approved record, no owner points, no notification
	var approved int64
	require.NoError(t, f.db.Model(&model.EngagementRecord{}).
		Where("kind = ?", model.EngagementApproved).Count(&approved).Error)
	require.Zero(t, approved)

	ownerSnap, err := f.progress.Snapshot(ctx, "owner")
	require.NoError(t, err)
	require.Zero(t, ownerSnap.TotalPoints)
	require.Empty(t, f.messenger.sentTo("owner"))

	viewerSnap, err := f.progress.Snapshot(ctx, "viewer")
	require.NoError(t, err)
	require.Equal(t, 1, viewerSnap.WishesViewed)
	require.Zero(t, viewerSnap.LikesGiven)
}

func TestApproveSurvivesCacheOutage(t *testing.T) {
	// Scenario C: redis down — ledger still commits, cursor silently restarts
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "viewer")
	pool := f.seedPool(t, "owner", 3)

	f.redis.Close()

	res, err := f.coordinator.Approve(ctx, "viewer")
	require.NoError(t, err)
	require.True(t, res.Degraded)
	require.Equal(t, pool[0].ID, res.Recorded.WishID)

	ownerSnap, err := f.progress.Snapshot(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 1, ownerSnap.LikesReceived)
	require.Equal(t, PointsLikeReceived, ownerSnap.TotalPoints)

	var recorded int64
	require.NoError(t, f.db.Model(&model.EngagementRecord{}).
		Where("kind = ?", model.EngagementApproved).Count(&recorded).Error)
	require.EqualValues(t, 1, recorded)

	// aggregation degraded to an immediate single notification
	require.Len(t, f.messenger.sentTo("owner"), 1)

	// the next action starts from offset 0 again
	res, err = f.coordinator.Approve(ctx, "viewer")
	require.NoError(t, err)
	require.Equal(t, pool[0].ID, res.Recorded.WishID)
}

func TestAggregatedNotificationSentOncePerBurst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	f.seedPool(t, "owner", 4)

	_, err := f.coordinator.Approve(ctx, "alice")
	require.NoError(t, err)
	_, err = f.coordinator.Approve(ctx, "bob")
	require.NoError(t, err)

	// only the batch-opening like produced a message
	require.Len(t, f.messenger.sentTo("owner"), 1)

	// both actors are pending; the union covers the full set, no duplicates
	events, err := f.aggregator.Peek(ctx, "owner")
	require.NoError(t, err)
	actors := map[string]int{}
	for _, ev := range events {
		actors[ev.ActorID]++
	}
	require.Equal(t, map[string]int{"alice": 1, "bob": 1}, actors)
}

func TestRevealContactConsumesBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	f.seedPool(t, "owner", 4)

	_, err := f.coordinator.Approve(ctx, "alice")
	require.NoError(t, err)
	_, err = f.coordinator.Approve(ctx, "bob")
	require.NoError(t, err)

	events, err := f.coordinator.RevealContact(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, events, 2)

	var shared int64
	require.NoError(t, f.db.Model(&model.EngagementRecord{}).
		Where("kind = ?", model.EngagementContactShared).Count(&shared).Error)
	require.EqualValues(t, 2, shared)

	snap, err := f.progress.Snapshot(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 2, snap.UsersHelped)

	// batch is gone: nothing to reveal, and the next like opens a new one
	events, err = f.coordinator.RevealContact(ctx, "owner")
	require.NoError(t, err)
	require.Empty(t, events)

	f.seedUser(t, "carol")
	_, err = f.coordinator.Approve(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, f.messenger.sentTo("owner"), 2)
}

func TestUnregisteredViewerMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedPool(t, "owner", 2)

	_, err := f.coordinator.Approve(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotRegistered)

	var records int64
	require.NoError(t, f.db.Model(&model.EngagementRecord{}).Count(&records).Error)
	require.Zero(t, records)
}

func TestFeedExhaustionIsTerminalUntilRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "viewer")
	f.seedPool(t, "owner", 2)

	for i := 0; i < 2; i++ {
		res, err := f.coordinator.Decline(ctx, "viewer")
		require.NoError(t, err)
		require.NotNil(t, res.Recorded)
	}

	res, err := f.coordinator.Decline(ctx, "viewer")
	require.NoError(t, err)
	require.True(t, res.Exhausted)
	require.Nil(t, res.Recorded, "no engagement past the end of the pool")

	view, err := f.coordinator.Restart(ctx, "viewer")
	require.NoError(t, err)
	require.NotNil(t, view.Wish)
	require.Equal(t, 0, view.Offset)
}

func TestBlockedRecipientDoesNotFailAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "owner")
	f.seedUser(t, "viewer")
	f.seedPool(t, "owner", 2)
	f.messenger.Fail = ErrRecipientBlocked

	res, err := f.coordinator.Approve(ctx, "viewer")
	require.NoError(t, err)
	require.NotNil(t, res.Recorded)

	snap, err := f.progress.Snapshot(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, 1, snap.LikesReceived)
}

func TestWishCreateUnlocksFirstWish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "maker")

	res, err := f.wishSvc.Create(ctx, "maker", "travel", "see the world", "travel", nil)
	require.NoError(t, err)
	require.Contains(t, res.NewUnlocks, "first_wish")

	snap, err := f.progress.Snapshot(ctx, "maker")
	require.NoError(t, err)
	require.Equal(t, 1, snap.WishesCreated)
	require.Equal(t, PointsWishCreated+10, snap.TotalPoints)
}

func TestWishMutationIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "maker")
	f.seedUser(t, "other")

	created, err := f.wishSvc.Create(ctx, "maker", "travel", "see the world", "", nil)
	require.NoError(t, err)

	err = f.wishSvc.Delete(ctx, "other", created.Wish.ID)
	require.ErrorIs(t, err, ErrNotOwner)

	created.Wish.Description = "hacked"
	err = f.wishSvc.Update(ctx, "other", created.Wish)
	require.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, f.wishSvc.Delete(ctx, "maker", created.Wish.ID))
}

func TestProfileAchievementsReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "maker")

	_, err := f.wishSvc.Create(ctx, "maker", "travel", "", "", nil)
	require.NoError(t, err)

	report, err := f.profile.Achievements(ctx, "maker")
	require.NoError(t, err)
	require.Equal(t, 1, report.Unlocked)
	require.Equal(t, len(achievement.Catalog), report.Total)
	require.Equal(t, PointsWishCreated+10, report.TotalPoints)
}

func TestReminderNudgesInactiveUsersOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "sleeper")
	f.seedUser(t, "active")

	require.NoError(t, f.db.Create(&model.UserProgress{
		ID: "p-sleeper", UserID: "sleeper",
		LastActiveOn: time.Now().AddDate(0, 0, -30).Format("2006-01-02"),
	}).Error)
	require.NoError(t, f.progress.TouchActivity(ctx, "active", time.Now()))

	reminder := NewReminder(f.users, f.progress, f.messenger, 120*time.Hour)
	sent, err := reminder.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, f.messenger.sentTo("sleeper"), 1)
	require.Empty(t, f.messenger.sentTo("active"))
}
