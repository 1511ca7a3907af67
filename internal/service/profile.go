package service

import (
	"context"

	"github.com/wanty-app/wishfeed/internal/achievement"
	"github.com/wanty-app/wishfeed/internal/model"
	"github.com/wanty-app/wishfeed/internal/repository"
)

// ProfileService serves the read-only achievement and stats surfaces.
type ProfileService struct {
	users       repository.UserRepository
	progress    repository.ProgressRepository
	unlocks     repository.UnlockRepository
	engagements repository.EngagementRepository
	engine      *achievement.Engine
}

func NewProfileService(
	users repository.UserRepository,
	progress repository.ProgressRepository,
	unlocks repository.UnlockRepository,
	engagements repository.EngagementRepository,
	engine *achievement.Engine,
) *ProfileService {
	return &ProfileService{users: users, progress: progress, unlocks: unlocks, engagements: engagements, engine: engine}
}

// AchievementReport is the profile's badge screen.
type AchievementReport struct {
	Unlocked    int                    `json:"unlocked"`
	Total       int                    `json:"total"`
	TotalPoints int                    `json:"total_points"`
	Progress    []achievement.Progress `json:"progress"`
}

func (s *ProfileService) Achievements(ctx context.Context, userID string) (*AchievementReport, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotRegistered
	}
	snap, err := s.progress.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.unlocks.ListIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	report := &AchievementReport{
		Unlocked:    len(unlocked),
		Total:       len(achievement.Catalog),
		TotalPoints: snap.TotalPoints,
		Progress:    s.engine.ProgressReport(snap, unlocked),
	}
	return report, nil
}

// Stats is the raw counter view plus recent engagement facts.
type Stats struct {
	Progress      *model.UserProgress       `json:"progress"`
	LikesReceived int64                     `json:"likes_received_total"`
	Recent        []*model.EngagementRecord `json:"recent"`
}

func (s *ProfileService) Stats(ctx context.Context, userID string) (*Stats, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotRegistered
	}
	snap, err := s.progress.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	likes, err := s.engagements.CountForOwner(ctx, userID, model.EngagementApproved)
	if err != nil {
		return nil, err
	}
	recent, err := s.engagements.ListForOwner(ctx, userID, 20)
	if err != nil {
		return nil, err
	}
	return &Stats{Progress: snap, LikesReceived: likes, Recent: recent}, nil
}
