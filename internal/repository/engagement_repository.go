package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wanty-app/wishfeed/internal/model"
)

// EngagementRepository appends immutable engagement facts.
type EngagementRepository interface {
	Record(ctx context.Context, actorID, ownerID, wishID, kind string) (*model.EngagementRecord, error)
	CountForOwner(ctx context.Context, ownerID, kind string) (int64, error)
	ListForOwner(ctx context.Context, ownerID string, limit int) ([]*model.EngagementRecord, error)
	WithTx(tx *gorm.DB) EngagementRepository
}

type engagementRepository struct{ db *gorm.DB }

func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) WithTx(tx *gorm.DB) EngagementRepository {
	return &engagementRepository{db: tx}
}

func (r *engagementRepository) Record(ctx context.Context, actorID, ownerID, wishID, kind string) (*model.EngagementRecord, error) {
	rec := &model.EngagementRecord{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		OwnerID:   ownerID,
		WishID:    wishID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *engagementRepository) CountForOwner(ctx context.Context, ownerID, kind string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.EngagementRecord{}).
		Where("owner_id = ? AND kind = ?", ownerID, kind).
		Count(&cnt).Error
	return cnt, err
}

func (r *engagementRepository) ListForOwner(ctx context.Context, ownerID string, limit int) ([]*model.EngagementRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []*model.EngagementRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
