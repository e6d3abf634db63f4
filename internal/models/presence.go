package models

import "time"

// Presence is a member's check-in record for a meeting. At most one row
// exists per (meeting, member) pair; repeated check-ins refresh it.
type Presence struct {
	BaseModel

	MeetingID string `gorm:"type:uuid;not null;uniqueIndex:idx_presence_meeting_member" json:"meeting_id"`
	MemberID  string `gorm:"type:uuid;not null;uniqueIndex:idx_presence_meeting_member" json:"member_id"`

	CheckedIn bool       `gorm:"not null;default:false" json:"checked_in"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	Location  string     `json:"location,omitempty"`
	Notes     string     `json:"notes,omitempty"`

	Meeting *Meeting `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	Member  *Member  `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}
