package model

import "time"

// Wish is a user-authored post, discoverable by everyone except its owner.
// Mutated only by the owner.
type Wish struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	OwnerID     string `gorm:"type:varchar(64);index:idx_wish_owner;not null"`
	Name        string `gorm:"type:text"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"type:varchar(64);index:idx_wish_category"`
	Image       []byte `gorm:"type:bytea"`
	CreatedAt   time.Time `gorm:"index:idx_wish_created"`
	UpdatedAt   time.Time
}

func (Wish) TableName() string { return "wishes" }
