package models

// IntentionStatus enumerates the lifecycle states of a join intention.
type IntentionStatus string

const (
	IntentionPending  IntentionStatus = "PENDING"
	IntentionApproved IntentionStatus = "APPROVED"
	IntentionRejected IntentionStatus = "REJECTED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s IntentionStatus) Valid() bool {
	switch s {
	case IntentionPending, IntentionApproved, IntentionRejected:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle transition is permitted.
func (s IntentionStatus) Terminal() bool {
	return s == IntentionApproved || s == IntentionRejected
}

// Intention represents a prospective member's request to join the community.
// Email is unique across all intentions regardless of status, and the
// registration token is assigned exactly once, at approval time.
type Intention struct {
	BaseModel

	Name    string          `gorm:"not null" json:"name"`
	Email   string          `gorm:"not null;uniqueIndex" json:"email"`
	Company string          `gorm:"not null" json:"company"`
	Reason  string          `gorm:"not null" json:"reason"`
	Status  IntentionStatus `gorm:"not null;default:PENDING;index" json:"status"`

	// Token is the one-time registration token minted at approval.
	Token *string `gorm:"uniqueIndex" json:"token,omitempty"`

	// ReferredBy holds the ID of the member who proposed this intention, when
	// it originated from the referral flow. It carries no workflow weight.
	ReferredBy *string `gorm:"type:uuid;index" json:"referred_by,omitempty"`

	// TrackingStatus is a free-form secondary status used by the
	// referral-as-new-member flow; it never affects the lifecycle state.
	TrackingStatus string `json:"tracking_status,omitempty"`

	Member *Member `gorm:"foreignKey:IntentionID" json:"member,omitempty"`
}
