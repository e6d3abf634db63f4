package models

// Post is a member-authored update on the community feed.
type Post struct {
	BaseModel

	AuthorID *string `gorm:"type:uuid;index" json:"author_id,omitempty"`
	Content  string  `gorm:"not null" json:"content"`
	ImageURL string  `json:"image_url,omitempty"`

	Author *Member `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
