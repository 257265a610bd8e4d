package models

import "time"

// Follow represents a directed follow edge from one user to another.
// At most one edge may exist per ordered pair and self-edges are rejected
// by the service layer.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follower_followee" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;index;uniqueIndex:idx_follower_followee" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`
}

// Block represents a directed block edge. Feeds exclude authors blocked in
// either direction.
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;index;uniqueIndex:idx_blocker_blocked" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;index;uniqueIndex:idx_blocker_blocked" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
