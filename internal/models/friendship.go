package models

import "time"

// FriendshipState defines the state of a relationship between two users.
type FriendshipState string

const (
	// StateAccepted means the friend request was accepted, and the users are now friends.
	StateAccepted FriendshipState = "accepted"

	// StateBlocked means one of the users has blocked the other.
	StateBlocked FriendshipState = "blocked"

	// StatePending means a friend request has been sent but not yet accepted.
	StatePending FriendshipState = "pending"

	// StateSuggested means a mutual friend has suggested the two users to each other.
	StateSuggested FriendshipState = "suggested"
)

// Friendship is one half of a bidirectional relationship between two users.
// Each logical relationship is stored as exactly two rows, (left, right) and
// (right, left), which always carry the same state, action user and
// timestamps. The primary key is a composite of (LeftUserID, RightUserID).
type Friendship struct {
	LeftUserID  uint `gorm:"primaryKey"`
	RightUserID uint `gorm:"primaryKey;check:chk_friendships_no_self,left_user_id <> right_user_id"`

	// ActionUserID is the user whose action produced the current state:
	// the requester of a pending request, the blocker of a block, the
	// suggester of a suggestion.
	ActionUserID uint `gorm:"not null;index"`

	State     FriendshipState `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Define foreign key relationships
	LeftUser   User `gorm:"foreignKey:LeftUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	RightUser  User `gorm:"foreignKey:RightUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ActionUser User `gorm:"foreignKey:ActionUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName overrides the table name to "friendships".
func (Friendship) TableName() string {
	return "friendships"
}
