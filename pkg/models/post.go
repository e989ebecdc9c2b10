package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post keeps denormalized like/comment counters; they only change together
// with the edge rows they count.
type Post struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	AuthorID      string     `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Content       string     `gorm:"type:varchar(280);not null" json:"content"`
	EventTitle    string     `gorm:"type:varchar(100)" json:"event_title"`
	EventLocation string     `gorm:"type:varchar(150)" json:"event_location"`
	EventDate     *time.Time `json:"event_date"`
	ImageURL      string     `gorm:"type:varchar(500)" json:"image_url"`
	LikeCount     int64      `gorm:"not null;default:0" json:"like_count"`
	CommentCount  int64      `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
