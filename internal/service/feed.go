package service

import (
	"context"

	"github.com/wanty-app/wishfeed/internal/model"
	"github.com/wanty-app/wishfeed/internal/repository"
)

// FeedSelector resolves a viewer's offset into the next eligible wish from the
// shared pool. The pool order is stable (created_at, id), so the same offset
// resolves to the same wish for the lifetime of a session; deletions in between
// may make offsets skip or repeat, which is accepted.
type FeedSelector struct {
	wishes repository.WishRepository
}

func NewFeedSelector(wishes repository.WishRepository) *FeedSelector {
	return &FeedSelector{wishes: wishes}
}

// Next returns the wish at offset for the viewer, never one of the viewer's
// own, or nil when the pool is exhausted.
func (s *FeedSelector) Next(ctx context.Context, viewerID string, offset int) (*model.Wish, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := s.wishes.ListVisible(ctx, viewerID, offset, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// PoolSize reports how many wishes are eligible for the viewer.
func (s *FeedSelector) PoolSize(ctx context.Context, viewerID string) (int64, error) {
	return s.wishes.CountVisible(ctx, viewerID)
}
