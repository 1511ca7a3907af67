package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementCreatesRowLazily(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	snap, err := repo.Increment(ctx, "u1", FieldLikesReceived, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.LikesReceived)
	assert.Equal(t, 5, snap.TotalPoints)
}

func TestIncrementAccumulates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	for i := 0; i < 24; i++ {
		_, err := repo.Increment(ctx, "u1", FieldLikesReceived, 1, 5)
		require.NoError(t, err)
	}
	snap, err := repo.Increment(ctx, "u1", FieldLikesGiven, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 24, snap.LikesReceived)
	assert.Equal(t, 1, snap.LikesGiven)
	assert.Equal(t, 24*5+2, snap.TotalPoints)
}

func TestIncrementRejectsUnknownField(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)

	_, err := repo.Increment(context.Background(), "u1", ProgressField("total_points; DROP TABLE users"), 1, 0)
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestAddPoints(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	_, err := repo.Increment(ctx, "u1", FieldLikesReceived, 1, 5)
	require.NoError(t, err)
	snap, err := repo.AddPoints(ctx, "u1", 75)
	require.NoError(t, err)

	assert.Equal(t, 80, snap.TotalPoints)
	assert.Equal(t, 1, snap.LikesReceived, "counters untouched by point awards")
}

func TestSnapshotAbsentUserIsZero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)

	snap, err := repo.Snapshot(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", snap.UserID)
	assert.Zero(t, snap.TotalPoints)
	assert.Zero(t, snap.LikesReceived)
}

func TestTouchActivityStreak(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()
	day := func(offset int) time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	// first ever activity starts a streak of 1
	require.NoError(t, repo.TouchActivity(ctx, "u1", day(0)))
	snap, err := repo.Snapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ConsecutiveActiveDays)

	// same day again is a no-op
	require.NoError(t, repo.TouchActivity(ctx, "u1", day(0)))
	snap, _ = repo.Snapshot(ctx, "u1")
	assert.Equal(t, 1, snap.ConsecutiveActiveDays)

	// consecutive days extend
	require.NoError(t, repo.TouchActivity(ctx, "u1", day(1)))
	require.NoError(t, repo.TouchActivity(ctx, "u1", day(2)))
	snap, _ = repo.Snapshot(ctx, "u1")
	assert.Equal(t, 3, snap.ConsecutiveActiveDays)

	// a gap resets to 1
	require.NoError(t, repo.TouchActivity(ctx, "u1", day(5)))
	snap, _ = repo.Snapshot(ctx, "u1")
	assert.Equal(t, 1, snap.ConsecutiveActiveDays)
}

func TestConcurrentIncrementsAreAllReflected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	// sqlite serializes writers; the property under test is that the
	// read-modify-write happens inside the statement, so no increment is lost
	const n = 30
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := repo.Increment(ctx, "owner", FieldLikesReceived, 1, 5)
			done <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}

	snap, err := repo.Snapshot(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, n, snap.LikesReceived)
	assert.Equal(t, n*5, snap.TotalPoints)
}
