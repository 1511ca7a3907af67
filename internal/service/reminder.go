package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wanty-app/wishfeed/internal/repository"
	"github.com/wanty-app/wishfeed/pkg/logger"
)

// Reminder nudges users who have gone quiet. Runs on a schedule from
// cmd/server; per-user delivery failures are logged and never abort the sweep.
type Reminder struct {
	users     repository.UserRepository
	progress  repository.ProgressRepository
	messenger Messenger
	inactive  time.Duration
}

func NewReminder(users repository.UserRepository, progress repository.ProgressRepository, messenger Messenger, inactive time.Duration) *Reminder {
	if inactive <= 0 {
		inactive = 120 * time.Hour
	}
	return &Reminder{users: users, progress: progress, messenger: messenger, inactive: inactive}
}

// Run sends the nudge to every user whose last activity predates the
// inactivity window. Returns how many messages went out.
func (r *Reminder) Run(ctx context.Context) (int, error) {
	ids, err := r.users.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-r.inactive).Format("2006-01-02")
	sent := 0
	for _, id := range ids {
		snap, err := r.progress.Snapshot(ctx, id)
		if err != nil {
			logger.Warn("reminder snapshot failed", zap.String("user", id), zap.Error(err))
			continue
		}
		if snap.LastActiveOn > cutoff {
			continue
		}
		user, err := r.users.Get(ctx, id)
		if err != nil || user == nil {
			continue
		}
		text := fmt.Sprintf("Hey %s! New wishes are waiting for you — come take a look.", actorSummary(user))
		if err := r.messenger.SendMessage(ctx, id, text, nil); err != nil {
			logger.Warn("reminder delivery failed", zap.String("user", id), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
