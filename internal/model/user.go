package model

import "time"

// User is a registered participant. Registration itself happens in the chat
// layer; the core only checks existence.
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	Username  string `gorm:"type:varchar(255)"`
	Name      string `gorm:"type:varchar(255)"`
	Age       int
	Gender    string `gorm:"type:varchar(16)"`
	Country   string `gorm:"type:varchar(64)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
