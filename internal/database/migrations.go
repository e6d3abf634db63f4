package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/conexahub/conexa/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
// The unique indexes on intentions.email, intentions.token, and
// members.intention_id are the backstop for the workflow's check-then-act
// uniqueness rules.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Intention{},
		&models.Member{},
		&models.Referral{},
		&models.Announcement{},
		&models.BusinessOpportunity{},
		&models.Meeting{},
		&models.Presence{},
		&models.Post{},
	)
}

// SeedData populates a welcome announcement on first start so the member
// dashboard is never empty.
func SeedData(db *gorm.DB) error {
	welcome := models.Announcement{
		BaseModel:   models.BaseModel{ID: "welcome"},
		Title:       "Welcome to Conexa",
		Content:     "Introduce yourself on the feed and check the opportunity board.",
		Type:        "INFO",
		AuthorName:  "Administration",
		IsActive:    true,
		PublishedAt: time.Now().UTC(),
	}

	return db.Where(models.Announcement{BaseModel: models.BaseModel{ID: welcome.ID}}).
		Attrs(welcome).
		FirstOrCreate(&models.Announcement{}).Error
}
