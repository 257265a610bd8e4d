// Package models contains data structures for the application's domain models.
package models

import "time"

// PlanTier identifies a user's subscription plan. The tier controls
// content-validation limits; billing itself is handled by an external
// payment collaborator.
type PlanTier string

const (
	// PlanTierFree is the default plan for new accounts.
	PlanTierFree PlanTier = "free"
	// PlanTierPlus unlocks larger content limits.
	PlanTierPlus PlanTier = "plus"
)

// User represents an account in the Tidepool application.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	PlanTier  PlanTier  `gorm:"type:varchar(20);not null;default:'free'" json:"plan_tier"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Posts     []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
