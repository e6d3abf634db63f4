package models

import "time"

// Meeting is a scheduled community gathering members check into.
type Meeting struct {
	BaseModel

	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`

	Presences []Presence `gorm:"foreignKey:MeetingID" json:"presences,omitempty"`
}
