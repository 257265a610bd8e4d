package models

import "time"

// NotificationType categorizes what triggered a notification.
type NotificationType string

const (
	// NotificationTypeComment is sent to a post author when someone comments.
	NotificationTypeComment NotificationType = "comment"
	// NotificationTypeLike is sent to a post or comment author on a like.
	NotificationTypeLike NotificationType = "like"
	// NotificationTypeFollow is sent to a user who gains a follower.
	NotificationTypeFollow NotificationType = "follow"
)

// Notification is a stored in-app notification. The core write paths never
// dispatch notifications themselves; the HTTP surface records one after a
// mutation succeeds. Real-time push delivery is out of scope.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	ActorID     uint             `gorm:"not null" json:"actor_id"`
	Type        NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	PostID      *uint            `json:"post_id,omitempty"`
	CommentID   *uint            `json:"comment_id,omitempty"`
	Read        bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt   time.Time        `json:"created_at"`

	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
