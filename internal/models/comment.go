package models

import "time"

// Comment represents a comment on a post.
//
// Comments form a forest per post: a comment with a nil ParentID is a root,
// every other comment replies to exactly one parent on the same post. Parent
// references always point to comments created strictly earlier, so cycles
// cannot occur. Deletes are physical and cascade through the whole subtree.
type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	PostID   uint     `gorm:"not null;index" json:"post_id"`
	ParentID *uint    `gorm:"index" json:"parent_id,omitempty"`
	User     User     `gorm:"foreignKey:UserID" json:"user"`
	Post     Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Parent   *Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`

	// LikesCount is denormalized and maintained by the like write paths.
	LikesCount int `gorm:"not null;default:0" json:"likes_count"`

	// RepliesCount is not persisted; computed at query time. A non-zero
	// value tells the caller a follow-up tier fetch is worthwhile.
	RepliesCount int `gorm:"->" json:"replies_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentPage is the paginated response shape for one tier of a post's
// comment forest.
type CommentPage struct {
	Comments []*Comment `json:"comments"`
	Total    int64      `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
