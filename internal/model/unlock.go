package model

import "time"

// AchievementUnlock marks a badge as earned.
// ux_unlock_user_achievement = (user_id, achievement_id): unlocking is idempotent,
// duplicate attempts are no-ops.
type AchievementUnlock struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	UserID        string `gorm:"type:varchar(64);index:idx_unlock_user;uniqueIndex:ux_unlock_user_achievement;not null"`
	AchievementID string `gorm:"type:varchar(50);uniqueIndex:ux_unlock_user_achievement;not null"`
	PointsEarned  int    `gorm:"not null;default:0"`
	UnlockedAt    time.Time
}

func (AchievementUnlock) TableName() string { return "achievement_unlocks" }
