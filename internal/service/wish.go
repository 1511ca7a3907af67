package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wanty-app/wishfeed/internal/achievement"
	"github.com/wanty-app/wishfeed/internal/model"
	"github.com/wanty-app/wishfeed/internal/repository"
)

// WishService owns wish authoring. Creation feeds the wishes_created counter
// and may unlock badges; edits and deletes are owner-only.
type WishService struct {
	db       *gorm.DB
	users    repository.UserRepository
	wishes   repository.WishRepository
	progress repository.ProgressRepository
	unlocks  repository.UnlockRepository
	engine   *achievement.Engine
}

func NewWishService(
	db *gorm.DB,
	users repository.UserRepository,
	wishes repository.WishRepository,
	progress repository.ProgressRepository,
	unlocks repository.UnlockRepository,
	engine *achievement.Engine,
) *WishService {
	return &WishService{db: db, users: users, wishes: wishes, progress: progress, unlocks: unlocks, engine: engine}
}

// CreateResult reports the stored wish and any badges the creation unlocked.
type CreateResult struct {
	Wish       *model.Wish `json:"wish"`
	NewUnlocks []string    `json:"new_unlocks,omitempty"`
}

func (s *WishService) Create(ctx context.Context, ownerID, name, description, category string, image []byte) (*CreateResult, error) {
	exists, err := s.users.Exists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotRegistered
	}

	wish := &model.Wish{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Category:    category,
		Image:       image,
	}
	res := &CreateResult{Wish: wish}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.wishes.WithTx(tx).Create(ctx, wish); err != nil {
			return err
		}
		prog := s.progress.WithTx(tx)
		if err := prog.TouchActivity(ctx, ownerID, time.Now()); err != nil {
			return err
		}
		snap, err := prog.Increment(ctx, ownerID, repository.FieldWishesCreated, 1, PointsWishCreated)
		if err != nil {
			return err
		}
		res.NewUnlocks, err = unlockAndAward(ctx, s.engine, prog, s.unlocks.WithTx(tx), ownerID, snap)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *WishService) Update(ctx context.Context, ownerID string, wish *model.Wish) error {
	existing, err := s.wishes.GetByID(ctx, wish.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrWishNotFound
	}
	if existing.OwnerID != ownerID {
		return ErrNotOwner
	}
	return s.wishes.Update(ctx, wish)
}

func (s *WishService) Delete(ctx context.Context, ownerID, wishID string) error {
	existing, err := s.wishes.GetByID(ctx, wishID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrWishNotFound
	}
	if existing.OwnerID != ownerID {
		return ErrNotOwner
	}
	return s.wishes.Delete(ctx, wishID)
}

func (s *WishService) ListMine(ctx context.Context, ownerID string) ([]*model.Wish, error) {
	return s.wishes.ListByOwner(ctx, ownerID)
}
