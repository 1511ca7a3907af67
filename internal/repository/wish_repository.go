package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wanty-app/wishfeed/internal/model"
)

// WishRepository owns the wish pool. ListVisible is the feed query: stable
// order (created_at, id) so repeated reads at the same offset return the same
// wish for the lifetime of a browsing session, viewer-owned rows excluded.
type WishRepository interface {
	Create(ctx context.Context, wish *model.Wish) error
	GetByID(ctx context.Context, id string) (*model.Wish, error)
	Update(ctx context.Context, wish *model.Wish) error
	Delete(ctx context.Context, id string) error
	ListVisible(ctx context.Context, viewerID string, offset, limit int) ([]*model.Wish, error)
	CountVisible(ctx context.Context, viewerID string) (int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Wish, error)
	WithTx(tx *gorm.DB) WishRepository
}

type wishRepository struct{ db *gorm.DB }

func NewWishRepository(db *gorm.DB) WishRepository { return &wishRepository{db: db} }

func (r *wishRepository) WithTx(tx *gorm.DB) WishRepository { return &wishRepository{db: tx} }

func (r *wishRepository) Create(ctx context.Context, wish *model.Wish) error {
	if wish.ID == "" {
		wish.ID = uuid.NewString()
	}
	if wish.CreatedAt.IsZero() {
		wish.CreatedAt = time.Now()
	}
	wish.UpdatedAt = wish.CreatedAt
	return r.db.WithContext(ctx).Create(wish).Error
}

func (r *wishRepository) GetByID(ctx context.Context, id string) (*model.Wish, error) {
	var wish model.Wish
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&wish).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wish, nil
}

func (r *wishRepository) Update(ctx context.Context, wish *model.Wish) error {
	wish.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(&model.Wish{}).
		Where("id = ?", wish.ID).
		Updates(map[string]interface{}{
			"name":        wish.Name,
			"description": wish.Description,
			"category":    wish.Category,
			"image":       wish.Image,
			"updated_at":  wish.UpdatedAt,
		}).Error
}

func (r *wishRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Wish{}).Error
}

func (r *wishRepository) ListVisible(ctx context.Context, viewerID string, offset, limit int) ([]*model.Wish, error) {
	if limit <= 0 {
		limit = 1
	}
	var rows []*model.Wish
	err := r.db.WithContext(ctx).
		Where("owner_id <> ?", viewerID).
		Order("created_at, id").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *wishRepository) CountVisible(ctx context.Context, viewerID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Wish{}).
		Where("owner_id <> ?", viewerID).
		Count(&cnt).Error
	return cnt, err
}

func (r *wishRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Wish, error) {
	var rows []*model.Wish
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at, id").
		Find(&rows).Error
	return rows, err
}
