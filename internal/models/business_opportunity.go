package models

import "time"

// BusinessOpportunity is a commercial lead published to members, optionally
// scoped to a category/segment and carrying an estimated value.
type BusinessOpportunity struct {
	BaseModel

	Title          string     `gorm:"not null" json:"title"`
	Description    string     `gorm:"not null" json:"description"`
	Company        string     `json:"company,omitempty"`
	ContactName    string     `json:"contact_name,omitempty"`
	Category       string     `gorm:"not null;default:GENERAL;index" json:"category"`
	Segment        string     `gorm:"index" json:"segment,omitempty"`
	Location       string     `json:"location,omitempty"`
	EstimatedValue *float64   `json:"estimated_value,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	AuthorName     string     `json:"author_name,omitempty"`
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	ExpiresAt      *time.Time `gorm:"index" json:"expires_at,omitempty"`

	PublishedAt time.Time `gorm:"not null" json:"published_at"`
}
