package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wanty-app/wishfeed/internal/model"
)

// ProgressField names a counter column on user_progress. Only these values are
// accepted by Increment; the column name is interpolated into SQL.
type ProgressField string

const (
	FieldWishesCreated         ProgressField = "wishes_created"
	FieldLikesReceived         ProgressField = "likes_received"
	FieldLikesGiven            ProgressField = "likes_given"
	FieldWishesViewed          ProgressField = "wishes_viewed"
	FieldUsersHelped           ProgressField = "users_helped"
	FieldConsecutiveActiveDays ProgressField = "consecutive_active_days"
)

var progressFields = map[ProgressField]bool{
	FieldWishesCreated:         true,
	FieldLikesReceived:         true,
	FieldLikesGiven:            true,
	FieldWishesViewed:          true,
	FieldUsersHelped:           true,
	FieldConsecutiveActiveDays: true,
}

// ErrUnknownField rejects increments against columns outside the whitelist.
var ErrUnknownField = errors.New("unknown progress field")

// ProgressRepository is the durable ledger of per-user counters and points.
// Increments are single upsert statements: the row is created lazily and two
// concurrent increments for the same user are both reflected, never lost.
type ProgressRepository interface {
	// Increment adds delta to field and points to total_points in one atomic
	// statement, returning the resulting row.
	Increment(ctx context.Context, userID string, field ProgressField, delta, points int) (*model.UserProgress, error)
	// AddPoints bumps total_points only (achievement awards).
	AddPoints(ctx context.Context, userID string, points int) (*model.UserProgress, error)
	// Snapshot reads the row without creating it; absent users get a zero
	// snapshot.
	Snapshot(ctx context.Context, userID string) (*model.UserProgress, error)
	// TouchActivity maintains the consecutive-day streak for the given moment.
	TouchActivity(ctx context.Context, userID string, now time.Time) error
	// WithTx binds the repository to a transaction handle.
	WithTx(tx *gorm.DB) ProgressRepository
}

type progressRepository struct{ db *gorm.DB }

func NewProgressRepository(db *gorm.DB) ProgressRepository { return &progressRepository{db: db} }

func (r *progressRepository) WithTx(tx *gorm.DB) ProgressRepository {
	return &progressRepository{db: tx}
}

func (r *progressRepository) Increment(ctx context.Context, userID string, field ProgressField, delta, points int) (*model.UserProgress, error) {
	if !progressFields[field] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	now := time.Now()
	row := &model.UserProgress{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	setInitial(row, field, delta)
	row.TotalPoints = points

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			string(field):  gorm.Expr(string(field)+" + ?", delta),
			"total_points": gorm.Expr("total_points + ?", points),
			"updated_at":   now,
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.Snapshot(ctx, userID)
}

func (r *progressRepository) AddPoints(ctx context.Context, userID string, points int) (*model.UserProgress, error) {
	now := time.Now()
	row := &model.UserProgress{
		ID:          uuid.NewString(),
		UserID:      userID,
		TotalPoints: points,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_points": gorm.Expr("total_points + ?", points),
			"updated_at":   now,
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.Snapshot(ctx, userID)
}

func (r *progressRepository) Snapshot(ctx context.Context, userID string) (*model.UserProgress, error) {
	var row model.UserProgress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserProgress{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *progressRepository) TouchActivity(ctx context.Context, userID string, now time.Time) error {
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	// make sure the row exists; a fresh user starts a streak of 1 today
	seed := &model.UserProgress{
		ID:                    uuid.NewString(),
		UserID:                userID,
		ConsecutiveActiveDays: 1,
		LastActiveOn:          today,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(seed).Error; err != nil {
		return err
	}

	// extend the streak when yesterday was the last active day; a conditional
	// update keeps repeated calls for the same day idempotent
	res := r.db.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND last_active_on = ?", userID, yesterday).
		Updates(map[string]interface{}{
			"consecutive_active_days": gorm.Expr("consecutive_active_days + 1"),
			"last_active_on":          today,
			"updated_at":              now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// a gap resets the streak; no-op when already touched today
	return r.db.WithContext(ctx).Model(&model.UserProgress{}).
		Where("user_id = ? AND last_active_on <> ? AND last_active_on <> ?", userID, today, yesterday).
		Updates(map[string]interface{}{
			"consecutive_active_days": 1,
			"last_active_on":          today,
			"updated_at":              now,
		}).Error
}

func setInitial(row *model.UserProgress, field ProgressField, delta int) {
	switch field {
	case FieldWishesCreated:
		row.WishesCreated = delta
	case FieldLikesReceived:
		row.LikesReceived = delta
	case FieldLikesGiven:
		row.LikesGiven = delta
	case FieldWishesViewed:
		row.WishesViewed = delta
	case FieldUsersHelped:
		row.UsersHelped = delta
	case FieldConsecutiveActiveDays:
		row.ConsecutiveActiveDays = delta
	}
}
