package models

import "time"

// Announcement is a notice published to the member dashboard. Visibility is
// a simple filter: active and either non-expiring or not yet expired.
type Announcement struct {
	BaseModel

	Title      string     `gorm:"not null" json:"title"`
	Content    string     `gorm:"not null" json:"content"`
	Type       string     `gorm:"not null;default:INFO" json:"type"`
	Priority   int        `gorm:"not null;default:0" json:"priority"`
	AuthorName string     `json:"author_name,omitempty"`
	IsActive   bool       `gorm:"not null;default:true;index" json:"is_active"`
	ExpiresAt  *time.Time `gorm:"index" json:"expires_at,omitempty"`

	PublishedAt time.Time `gorm:"not null" json:"published_at"`
}
