package models

import (
	"time"
)

type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"uniqueIndex;size:250;not null" json:"title"`
	PublishDate   time.Time `gorm:"not null" json:"publish_date"`
	Body          string    `gorm:"type:text;not null" json:"body"` // markdown source
	CoverImageURL string    `gorm:"size:500" json:"cover_image_url"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Not a database column, filled in for list views
	CommentCount int `gorm:"-" json:"comment_count"`
}
