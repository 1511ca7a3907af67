package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wanty-app/wishfeed/internal/model"
)

// UnlockRepository persists achievement unlocks. The (user_id, achievement_id)
// unique index makes Unlock idempotent: duplicate attempts report inserted ==
// false instead of erroring, so the caller awards points at most once.
type UnlockRepository interface {
	Unlock(ctx context.Context, userID, achievementID string, points int) (inserted bool, err error)
	ListIDs(ctx context.Context, userID string) (map[string]bool, error)
	List(ctx context.Context, userID string) ([]*model.AchievementUnlock, error)
	WithTx(tx *gorm.DB) UnlockRepository
}

type unlockRepository struct{ db *gorm.DB }

func NewUnlockRepository(db *gorm.DB) UnlockRepository { return &unlockRepository{db: db} }

func (r *unlockRepository) WithTx(tx *gorm.DB) UnlockRepository {
	return &unlockRepository{db: tx}
}

func (r *unlockRepository) Unlock(ctx context.Context, userID, achievementID string, points int) (bool, error) {
	row := &model.AchievementUnlock{
		ID:            uuid.NewString(),
		UserID:        userID,
		AchievementID: achievementID,
		PointsEarned:  points,
		UnlockedAt:    time.Now(),
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *unlockRepository) ListIDs(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.AchievementUnlock{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *unlockRepository) List(ctx context.Context, userID string) ([]*model.AchievementUnlock, error) {
	var rows []*model.AchievementUnlock
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at").
		Find(&rows).Error
	return rows, err
}
