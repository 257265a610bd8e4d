package models

import "time"

// PostVisibility controls who may see a post in lists and feeds.
type PostVisibility string

const (
	// VisibilityPublic makes a post visible to everyone.
	VisibilityPublic PostVisibility = "public"
	// VisibilityPrivate restricts a post to its author.
	VisibilityPrivate PostVisibility = "private"
)

// Post represents a post in the Tidepool application.
//
// LikesCount and CommentsCount are denormalized columns. Every write that
// changes the underlying cardinality (like/unlike, comment create/delete)
// adjusts them with a relative atomic update inside the same transaction as
// the relationship row; they are never recomputed by counting rows at
// request time. CommentsCount covers comments at every depth of the post's
// comment forest, not just roots.
type Post struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	ImageURL   string         `json:"image_url"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	User       User           `gorm:"foreignKey:UserID" json:"user"`
	Visibility PostVisibility `gorm:"type:varchar(20);not null;default:'public';index" json:"visibility"`

	LikesCount    int `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int `gorm:"not null;default:0" json:"comments_count"`

	// Liked indicates whether the requesting user liked this post (computed).
	Liked bool `gorm:"->" json:"liked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
