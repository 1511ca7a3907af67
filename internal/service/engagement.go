package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wanty-app/wishfeed/internal/achievement"
	"github.com/wanty-app/wishfeed/internal/cache"
	"github.com/wanty-app/wishfeed/internal/model"
	"github.com/wanty-app/wishfeed/internal/repository"
	"github.com/wanty-app/wishfeed/pkg/logger"
)

// Point values per action, matching the original scoring.
const (
	PointsLikeReceived = 5
	PointsLikeGiven    = 2
	PointsWishViewed   = 1
	PointsWishCreated  = 15
)

// ActionResult is what an approve/decline hands back to the trigger adapter.
type ActionResult struct {
	Recorded   *model.EngagementRecord `json:"recorded,omitempty"`
	NewUnlocks []string                `json:"new_unlocks,omitempty"`
	Next       *model.Wish             `json:"next,omitempty"`
	Offset     int                     `json:"offset"`
	Exhausted  bool                    `json:"exhausted"`
	// Degraded means a cache operation failed and a documented fallback was
	// used; the durable outcome is unaffected.
	Degraded bool `json:"degraded,omitempty"`
}

// FeedView is the read-only answer to "what am I looking at".
type FeedView struct {
	Wish      *model.Wish `json:"wish,omitempty"`
	Offset    int         `json:"offset"`
	Exhausted bool        `json:"exhausted"`
}

// Coordinator orchestrates the approval flow: cursor -> feed -> one durable
// transaction (engagement record, both ledgers, unlock-and-award) -> pending
// notification -> cursor advance -> next wish. Ledger writes are atomic per
// action; cursor and aggregator are best-effort and only ever degrade the
// browsing experience, never the ledger.
type Coordinator struct {
	db          *gorm.DB
	users       repository.UserRepository
	progress    repository.ProgressRepository
	unlocks     repository.UnlockRepository
	engagements repository.EngagementRepository
	feed        *FeedSelector
	cursor      *cache.CursorStore
	aggregator  *cache.NotificationAggregator
	engine      *achievement.Engine
	notifier    *Notifier
}

func NewCoordinator(
	db *gorm.DB,
	users repository.UserRepository,
	progress repository.ProgressRepository,
	unlocks repository.UnlockRepository,
	engagements repository.EngagementRepository,
	feed *FeedSelector,
	cursor *cache.CursorStore,
	aggregator *cache.NotificationAggregator,
	engine *achievement.Engine,
	notifier *Notifier,
) *Coordinator {
	return &Coordinator{
		db:          db,
		users:       users,
		progress:    progress,
		unlocks:     unlocks,
		engagements: engagements,
		feed:        feed,
		cursor:      cursor,
		aggregator:  aggregator,
		engine:      engine,
		notifier:    notifier,
	}
}

// Approve records a like for the wish at the viewer's cursor and moves on.
func (c *Coordinator) Approve(ctx context.Context, viewerID string) (*ActionResult, error) {
	actor, err := c.requireUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	res := &ActionResult{}
	offset := c.currentOffset(ctx, viewerID, res)

	wish, err := c.feed.Next(ctx, viewerID, offset)
	if err != nil {
		return nil, err
	}
	if wish == nil {
		res.Offset = offset
		res.Exhausted = true
		return res, nil
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := c.engagements.WithTx(tx)
		prog := c.progress.WithTx(tx)
		unl := c.unlocks.WithTx(tx)

		res.Recorded, err = eng.Record(ctx, viewerID, wish.OwnerID, wish.ID, model.EngagementApproved)
		if err != nil {
			return err
		}
		if err := prog.TouchActivity(ctx, viewerID, time.Now()); err != nil {
			return err
		}
		ownerSnap, err := prog.Increment(ctx, wish.OwnerID, repository.FieldLikesReceived, 1, PointsLikeReceived)
		if err != nil {
			return err
		}
		if _, err := prog.Increment(ctx, viewerID, repository.FieldLikesGiven, 1, PointsLikeGiven); err != nil {
			return err
		}
		actorSnap, err := prog.Increment(ctx, viewerID, repository.FieldWishesViewed, 1, PointsWishViewed)
		if err != nil {
			return err
		}
		if _, err := unlockAndAward(ctx, c.engine, prog, unl, wish.OwnerID, ownerSnap); err != nil {
			return err
		}
		res.NewUnlocks, err = unlockAndAward(ctx, c.engine, prog, unl, viewerID, actorSnap)
		return err
	})
	if err != nil {
		// nothing committed: no cursor advance, no notification
		return nil, err
	}

	c.dispatchNotification(ctx, actor, wish, res)
	return c.advanceAndPeek(ctx, viewerID, offset, res)
}

// Decline records a pass on the wish at the viewer's cursor. The owner gets
// nothing; the viewer still earns the view.
func (c *Coordinator) Decline(ctx context.Context, viewerID string) (*ActionResult, error) {
	if _, err := c.requireUser(ctx, viewerID); err != nil {
		return nil, err
	}

	res := &ActionResult{}
	offset := c.currentOffset(ctx, viewerID, res)

	wish, err := c.feed.Next(ctx, viewerID, offset)
	if err != nil {
		return nil, err
	}
	if wish == nil {
		res.Offset = offset
		res.Exhausted = true
		return res, nil
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := c.engagements.WithTx(tx)
		prog := c.progress.WithTx(tx)
		unl := c.unlocks.WithTx(tx)

		res.Recorded, err = eng.Record(ctx, viewerID, wish.OwnerID, wish.ID, model.EngagementDeclined)
		if err != nil {
			return err
		}
		if err := prog.TouchActivity(ctx, viewerID, time.Now()); err != nil {
			return err
		}
		actorSnap, err := prog.Increment(ctx, viewerID, repository.FieldWishesViewed, 1, PointsWishViewed)
		if err != nil {
			return err
		}
		res.NewUnlocks, err = unlockAndAward(ctx, c.engine, prog, unl, viewerID, actorSnap)
		return err
	})
	if err != nil {
		return nil, err
	}

	return c.advanceAndPeek(ctx, viewerID, offset, res)
}

// Current shows the wish at the viewer's cursor without advancing.
func (c *Coordinator) Current(ctx context.Context, viewerID string) (*FeedView, error) {
	if _, err := c.requireUser(ctx, viewerID); err != nil {
		return nil, err
	}
	view := &FeedView{}
	offset, err := c.cursor.Get(ctx, viewerID)
	if err != nil {
		logger.Warn("cursor unavailable, browsing from start", zap.String("viewer", viewerID), zap.Error(err))
		offset = 0
	}
	view.Offset = offset
	wish, err := c.feed.Next(ctx, viewerID, offset)
	if err != nil {
		return nil, err
	}
	view.Wish = wish
	view.Exhausted = wish == nil
	return view, nil
}

// Restart puts the viewer back at the start of the pool.
func (c *Coordinator) Restart(ctx context.Context, viewerID string) (*FeedView, error) {
	if _, err := c.requireUser(ctx, viewerID); err != nil {
		return nil, err
	}
	if err := c.cursor.Reset(ctx, viewerID); err != nil {
		logger.Warn("cursor reset failed", zap.String("viewer", viewerID), zap.Error(err))
	}
	wish, err := c.feed.Next(ctx, viewerID, 0)
	if err != nil {
		return nil, err
	}
	return &FeedView{Wish: wish, Offset: 0, Exhausted: wish == nil}, nil
}

// EndSession drops the viewer's cursor entirely.
func (c *Coordinator) EndSession(ctx context.Context, viewerID string) {
	if err := c.cursor.Clear(ctx, viewerID); err != nil {
		logger.Warn("cursor clear failed", zap.String("viewer", viewerID), zap.Error(err))
	}
}

// RevealContact consumes the owner's pending batch: one contact_shared record
// per pending like, a users_helped bump per distinct actor, then the batch is
// cleared. Returns the consumed events so the adapter can render contacts.
func (c *Coordinator) RevealContact(ctx context.Context, ownerID string) ([]cache.PendingEvent, error) {
	if _, err := c.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	events, err := c.aggregator.Peek(ctx, ownerID)
	if err != nil {
		logger.Warn("aggregator peek failed on reveal", zap.String("owner", ownerID), zap.Error(err))
		return nil, nil
	}
	if len(events) == 0 {
		return nil, nil
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := c.engagements.WithTx(tx)
		prog := c.progress.WithTx(tx)
		unl := c.unlocks.WithTx(tx)

		seen := map[string]bool{}
		var snap *model.UserProgress
		for _, ev := range events {
			if _, err := eng.Record(ctx, ev.ActorID, ownerID, ev.WishID, model.EngagementContactShared); err != nil {
				return err
			}
			if seen[ev.ActorID] {
				continue
			}
			seen[ev.ActorID] = true
			var err error
			snap, err = prog.Increment(ctx, ownerID, repository.FieldUsersHelped, 1, 0)
			if err != nil {
				return err
			}
		}
		if snap == nil {
			return nil
		}
		_, err := unlockAndAward(ctx, c.engine, prog, unl, ownerID, snap)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := c.aggregator.Clear(ctx, ownerID); err != nil {
		logger.Warn("aggregator clear failed", zap.String("owner", ownerID), zap.Error(err))
	}
	return events, nil
}

func (c *Coordinator) requireUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotRegistered
	}
	return user, nil
}

// currentOffset reads the cursor, degrading to the start of the pool when the
// cache is unreachable.
func (c *Coordinator) currentOffset(ctx context.Context, viewerID string, res *ActionResult) int {
	offset, err := c.cursor.Get(ctx, viewerID)
	if err != nil {
		logger.Warn("cursor unavailable, browsing from start", zap.String("viewer", viewerID), zap.Error(err))
		res.Degraded = true
		return 0
	}
	return offset
}

// dispatchNotification enqueues the pending event and, when this event opened
// the batch, sends the aggregated message covering everything pending at send
// time. With the aggregator down it falls back to an immediate single
// notification.
func (c *Coordinator) dispatchNotification(ctx context.Context, actor *model.User, wish *model.Wish, res *ActionResult) {
	ev := cache.PendingEvent{
		WishID:       wish.ID,
		WishName:     wish.Name,
		ActorID:      actor.ID,
		ActorSummary: actorSummary(actor),
		At:           time.Now(),
	}
	count, err := c.aggregator.Enqueue(ctx, wish.OwnerID, ev)
	if err != nil {
		logger.Warn("aggregator unavailable, sending immediately",
			zap.String("owner", wish.OwnerID), zap.Error(err))
		res.Degraded = true
		c.notifier.NotifyAggregated(ctx, wish.OwnerID, []cache.PendingEvent{ev})
		return
	}
	if count != 1 {
		// a batch is already open; this event rides along with it
		return
	}
	events, err := c.aggregator.Peek(ctx, wish.OwnerID)
	if err != nil || len(events) == 0 {
		events = []cache.PendingEvent{ev}
	}
	c.notifier.NotifyAggregated(ctx, wish.OwnerID, events)
}

// advanceAndPeek moves the cursor past the acted-on wish and resolves what the
// viewer sees next. A failed advance keeps the action successful but repeats
// the position on the next visit.
func (c *Coordinator) advanceAndPeek(ctx context.Context, viewerID string, offset int, res *ActionResult) (*ActionResult, error) {
	nextOffset := offset + 1
	if adv, err := c.cursor.Advance(ctx, viewerID); err != nil {
		logger.Warn("cursor advance failed", zap.String("viewer", viewerID), zap.Error(err))
		res.Degraded = true
	} else {
		nextOffset = adv
	}
	res.Offset = nextOffset

	next, err := c.feed.Next(ctx, viewerID, nextOffset)
	if err != nil {
		return nil, err
	}
	res.Next = next
	res.Exhausted = next == nil
	return res, nil
}

// unlockAndAward runs the rule table against a fresh snapshot and persists any
// newly crossed thresholds. The unique index makes a concurrent double attempt
// a no-op, so points are awarded exactly once per badge.
func unlockAndAward(
	ctx context.Context,
	engine *achievement.Engine,
	prog repository.ProgressRepository,
	unl repository.UnlockRepository,
	userID string,
	snap *model.UserProgress,
) ([]string, error) {
	already, err := unl.ListIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	var granted []string
	for _, id := range engine.Evaluate(snap, already) {
		a := achievement.ByID(id)
		if a == nil {
			continue
		}
		inserted, err := unl.Unlock(ctx, userID, id, a.Points)
		if err != nil {
			return nil, err
		}
		if !inserted {
			continue
		}
		if _, err := prog.AddPoints(ctx, userID, a.Points); err != nil {
			return nil, err
		}
		granted = append(granted, id)
	}
	return granted, nil
}

func actorSummary(u *model.User) string {
	if u.Name != "" {
		return u.Name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}
