package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wanty-app/wishfeed/config"
	"github.com/wanty-app/wishfeed/internal/model"
)

// InitDB opens the primary store and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables the core owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Wish{},
		&model.EngagementRecord{},
		&model.UserProgress{},
		&model.AchievementUnlock{},
	)
}
