package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanty-app/wishfeed/internal/model"
)

func TestEvaluateCrossedThresholds(t *testing.T) {
	engine := NewEngine()
	snap := &model.UserProgress{WishesCreated: 1, LikesReceived: 25}

	got := engine.Evaluate(snap, map[string]bool{})
	assert.ElementsMatch(t, []string{"first_wish", "popular_dreamer"}, got)
}

func TestEvaluateSkipsAlreadyUnlocked(t *testing.T) {
	engine := NewEngine()
	snap := &model.UserProgress{WishesCreated: 12}

	got := engine.Evaluate(snap, map[string]bool{"first_wish": true})
	assert.Equal(t, []string{"wish_master"}, got)
}

func TestEvaluateBelowThreshold(t *testing.T) {
	engine := NewEngine()
	snap := &model.UserProgress{LikesReceived: 24, LikesGiven: 99, WishesViewed: 49}

	assert.Empty(t, engine.Evaluate(snap, map[string]bool{}))
}

func TestEvaluateNeverReturnsCounterlessBadges(t *testing.T) {
	engine := NewEngine()
	snap := &model.UserProgress{
		WishesCreated:         1000,
		LikesReceived:         1000,
		LikesGiven:            1000,
		WishesViewed:          1000,
		UsersHelped:           1000,
		ConsecutiveActiveDays: 1000,
	}

	got := engine.Evaluate(snap, map[string]bool{})
	assert.NotContains(t, got, "weekly_champion")
	assert.Len(t, got, len(Catalog)-1)
}

func TestEvaluateNilSnapshot(t *testing.T) {
	assert.Empty(t, NewEngine().Evaluate(nil, nil))
}

func TestProgressReport(t *testing.T) {
	engine := NewEngine()
	snap := &model.UserProgress{LikesReceived: 5, WishesCreated: 2}

	report := engine.ProgressReport(snap, map[string]bool{"first_wish": true})
	require.Len(t, report, len(Catalog))

	byID := map[string]Progress{}
	for _, p := range report {
		byID[p.Achievement.ID] = p
	}

	assert.True(t, byID["first_wish"].Unlocked)
	assert.Equal(t, float64(100), byID["first_wish"].Percent)
	assert.Equal(t, 5, byID["popular_dreamer"].Current)
	assert.Equal(t, 25, byID["popular_dreamer"].Required)
	assert.InDelta(t, 20.0, byID["popular_dreamer"].Percent, 0.01)
	assert.False(t, byID["weekly_champion"].Unlocked)
}

func TestByID(t *testing.T) {
	a := ByID("popular_dreamer")
	require.NotNil(t, a)
	assert.Equal(t, 75, a.Points)
	assert.Nil(t, ByID("no_such_badge"))
}
