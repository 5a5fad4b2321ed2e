package models

import "time"

// Follower is a unidirectional "follows" edge. Unlike Friendship there is no
// mirror row: B following A back is a separate, independent edge.
// The primary key is a composite of (FollowerID, FollowedID).
type Follower struct {
	FollowerID uint `gorm:"primaryKey"`
	FollowedID uint `gorm:"primaryKey"`

	// IsSnoozed marks the edge as temporarily muted. Expiration is only
	// meaningful while IsSnoozed is set; it is when the snooze lapses.
	IsSnoozed  bool `gorm:"not null;default:false"`
	Expiration *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Define foreign key relationships
	FollowerUser User `gorm:"foreignKey:FollowerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FollowedUser User `gorm:"foreignKey:FollowedID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName overrides the table name to "followers".
func (Follower) TableName() string {
	return "followers"
}
