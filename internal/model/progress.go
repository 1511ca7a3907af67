package model

import "time"

// UserProgress holds the per-user counters and point total. One row per user,
// created lazily, mutated only through atomic increments.
type UserProgress struct {
	ID                    string `gorm:"primaryKey;type:varchar(36)"`
	UserID                string `gorm:"type:varchar(64);uniqueIndex:ux_progress_user;not null"`
	WishesCreated         int    `gorm:"not null;default:0"`
	LikesReceived         int    `gorm:"not null;default:0"`
	LikesGiven            int    `gorm:"not null;default:0"`
	WishesViewed          int    `gorm:"not null;default:0"`
	UsersHelped           int    `gorm:"not null;default:0"`
	ConsecutiveActiveDays int    `gorm:"not null;default:0"`
	TotalPoints           int    `gorm:"not null;default:0"`
	LastActiveOn          string `gorm:"type:varchar(10)"` // YYYY-MM-DD, drives the streak
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (UserProgress) TableName() string { return "user_progress" }
