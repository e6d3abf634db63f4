package models

// ReferralStatus enumerates the progression of a business referral.
type ReferralStatus string

const (
	ReferralNew         ReferralStatus = "NEW"
	ReferralInContact   ReferralStatus = "IN_CONTACT"
	ReferralNegotiating ReferralStatus = "NEGOTIATING"
	ReferralClosed      ReferralStatus = "CLOSED"
	ReferralRejected    ReferralStatus = "REJECTED"
)

// Valid reports whether the status is one of the known referral states.
func (s ReferralStatus) Valid() bool {
	switch s {
	case ReferralNew, ReferralInContact, ReferralNegotiating, ReferralClosed, ReferralRejected:
		return true
	}
	return false
}

// Referral records a business introduction exchanged between two members.
// Referrals reference members regardless of active status, which is why
// members are soft-deleted rather than removed.
type Referral struct {
	BaseModel

	GiverID    string `gorm:"type:uuid;not null;index" json:"giver_id"`
	ReceiverID string `gorm:"type:uuid;not null;index" json:"receiver_id"`

	CompanyName string         `gorm:"not null" json:"company_name"`
	ContactName string         `gorm:"not null" json:"contact_name"`
	ContactInfo string         `gorm:"not null" json:"contact_info"`
	Opportunity string         `gorm:"not null" json:"opportunity"`
	Status      ReferralStatus `gorm:"not null;default:NEW;index" json:"status"`

	Giver    *Member `gorm:"foreignKey:GiverID" json:"giver,omitempty"`
	Receiver *Member `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}
