package models

import "time"

// Member is an approved participant's profile, one-to-one with the intention
// that originated it. A row is created as a placeholder (empty profile
// fields) the instant its intention is approved and becomes complete once
// the registration token is redeemed.
type Member struct {
	BaseModel

	IntentionID string `gorm:"type:uuid;not null;uniqueIndex" json:"intention_id"`

	Phone              string `json:"phone"`
	LinkedIn           string `json:"linkedin,omitempty"`
	Profession         string `json:"profession"`
	Segment            string `json:"segment"`
	CompanyDescription string `json:"company_description,omitempty"`

	IsActive bool      `gorm:"not null;default:true;index" json:"is_active"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`

	Intention         *Intention `gorm:"foreignKey:IntentionID" json:"intention,omitempty"`
	ReferralsGiven    []Referral `gorm:"foreignKey:GiverID" json:"referrals_given,omitempty"`
	ReferralsReceived []Referral `gorm:"foreignKey:ReceiverID" json:"referrals_received,omitempty"`
	Posts             []Post     `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Presences         []Presence `gorm:"foreignKey:MemberID" json:"presences,omitempty"`
}

// ProfileComplete reports whether the required profile fields have been
// filled in, i.e. the member is no longer a placeholder.
func (m *Member) ProfileComplete() bool {
	return m.Phone != "" && m.Profession != "" && m.Segment != ""
}
