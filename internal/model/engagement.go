package model

import "time"

// Engagement kinds. Append-only facts, never updated.
const (
	EngagementApproved      = "approved"
	EngagementDeclined      = "declined"
	EngagementContactShared = "contact_shared"
)

// EngagementRecord is one viewer action against another user's wish.
type EngagementRecord struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	ActorID   string `gorm:"type:varchar(64);index:idx_engagement_actor;not null"`
	OwnerID   string `gorm:"type:varchar(64);index:idx_engagement_owner;not null"`
	WishID    string `gorm:"type:varchar(36);index:idx_engagement_wish;not null"`
	Kind      string `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time
}

func (EngagementRecord) TableName() string { return "engagement_records" }
