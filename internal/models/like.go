package models

import "time"

// LikeTargetType distinguishes what a like points at.
type LikeTargetType string

const (
	// LikeTargetPost marks a like on a post.
	LikeTargetPost LikeTargetType = "post"
	// LikeTargetComment marks a like on a comment.
	LikeTargetComment LikeTargetType = "comment"
)

// Like represents a user's like on a post or comment.
// The combination of UserID, TargetType and TargetID must be unique; the
// write path checks existence inside its transaction and surfaces a
// duplicate attempt as a conflict rather than double-counting.
type Like struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_like_user_target" json:"user_id"`
	TargetType LikeTargetType `gorm:"type:varchar(10);not null;uniqueIndex:idx_like_user_target" json:"target_type"`
	TargetID   uint           `gorm:"not null;uniqueIndex:idx_like_user_target" json:"target_id"`
	CreatedAt  time.Time      `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
