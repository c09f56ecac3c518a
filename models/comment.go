package models

import "time"

// Comment is a reply to a post. PostID is a plain reference; deleting the
// post leaves its comments in place.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	PostID    string    `gorm:"index;size:64;not null" json:"post_id"`
	OwnerID   string    `gorm:"index;size:64" json:"-"`
	Author    Author    `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	IsLiked   bool      `gorm:"not null;default:false" json:"is_liked"`
}
