package relationship

import (
	"time"

	"socialgraph/backend/internal/models"

	"gorm.io/gorm"
)

// RequestDirection distinguishes a user's request inbox from their outbox.
type RequestDirection string

const (
	// DirectionIncoming means the other user sent the request.
	DirectionIncoming RequestDirection = "incoming"
	// DirectionOutgoing means the user sent the request themselves.
	DirectionOutgoing RequestDirection = "outgoing"
)

// FriendRequest is one pending request as seen from a given user.
// RequestedAt is when the pair became pending, which for a request promoted
// from a suggestion is later than the row's creation time.
type FriendRequest struct {
	Direction   RequestDirection
	Sender      models.User
	Receiver    models.User
	RequestedAt time.Time
}

// FriendSuggestion is one suggested friendship: who suggested it, and the
// users it was suggested to.
type FriendSuggestion struct {
	Suggester models.User
	Receivers []models.User
	CreatedAt time.Time
}

// Get fetches the pair between two users, order-independent.
func (s *Service) Get(id1, id2 uint) (Pair, error) {
	return NewLedger(s.db).Get(id1, id2)
}

// IsFriend reports whether the two users have an accepted friendship.
func (s *Service) IsFriend(id1, id2 uint) (bool, error) {
	var n int64
	err := s.db.Model(&models.Friendship{}).
		Where("left_user_id = ? AND right_user_id = ? AND state = ?",
			id1, id2, models.StateAccepted).
		Count(&n).Error
	return n > 0, err
}

// IsFollowing reports whether follower follows followed.
func (s *Service) IsFollowing(followerID, followedID uint) (bool, error) {
	f, err := NewFollowGraph(s.db).Get(followerID, followedID)
	return f != nil, err
}

// IsSnoozing reports whether follower has an unexpired snooze on followed.
func (s *Service) IsSnoozing(followerID, followedID uint) (bool, error) {
	f, err := NewFollowGraph(s.db).Get(followerID, followedID)
	if err != nil {
		return false, err
	}
	return snoozing(f), nil
}

// IsMutualFriendOf reports whether selfID has accepted friendships with
// both id1 and id2.
func (s *Service) IsMutualFriendOf(selfID, id1, id2 uint) (bool, error) {
	return isMutualFriendOf(s.db, selfID, id1, id2)
}

func isMutualFriendOf(db *gorm.DB, selfID, id1, id2 uint) (bool, error) {
	var n int64
	err := db.Model(&models.Friendship{}).
		Where("left_user_id = ? AND state = ? AND right_user_id IN ?",
			selfID, models.StateAccepted, []uint{id1, id2}).
		Count(&n).Error
	return n == 2, err
}

// MutualFriends returns the users who are friends with both id1 and id2.
// The two friend sets are intersected in SQL rather than walked pairwise.
func (s *Service) MutualFriends(id1, id2 uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Raw(`
		SELECT u.* FROM users u
		JOIN (
			SELECT right_user_id AS id FROM friendships
			WHERE left_user_id = ? AND state = ?
			INTERSECT
			SELECT right_user_id AS id FROM friendships
			WHERE left_user_id = ? AND state = ?
		) mutual ON u.id = mutual.id`,
		id1, models.StateAccepted, id2, models.StateAccepted).
		Scan(&users).Error
	return users, err
}

// Friends returns the users the given user has accepted friendships with.
func (s *Service) Friends(userID uint) ([]models.User, error) {
	return s.rightUsers(userID, models.StateAccepted, false)
}

// BlockedUsers returns the users the given user has blocked. Rows where the
// user is the blocked party are excluded by matching the action user.
func (s *Service) BlockedUsers(userID uint) ([]models.User, error) {
	return s.rightUsers(userID, models.StateBlocked, true)
}

func (s *Service) rightUsers(userID uint, state models.FriendshipState, actorOnly bool) ([]models.User, error) {
	q := s.db.Model(&models.User{}).
		Joins("JOIN friendships f ON f.right_user_id = users.id").
		Where("f.left_user_id = ? AND f.state = ?", userID, state)
	if actorOnly {
		q = q.Where("f.action_user_id = ?", userID)
	}
	var users []models.User
	err := q.Find(&users).Error
	return users, err
}

// Followers returns the users following the given user.
func (s *Service) Followers(userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN followers f ON f.follower_id = users.id").
		Where("f.followed_id = ?", userID).
		Find(&users).Error
	return users, err
}

// Followings returns the users the given user is following.
func (s *Service) Followings(userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN followers f ON f.followed_id = users.id").
		Where("f.follower_id = ?", userID).
		Find(&users).Error
	return users, err
}

// FriendRequests returns the user's pending requests, inbox and outbox
// together. Each logical request surfaces once, read off the rows where the
// user holds the left side; the direction falls out of the action user.
func (s *Service) FriendRequests(userID uint) ([]FriendRequest, error) {
	var rows []models.Friendship
	err := s.db.
		Where("left_user_id = ? AND state = ?", userID, models.StatePending).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	requests := make([]FriendRequest, 0, len(rows))
	for _, r := range rows {
		var self, other models.User
		if err := s.db.First(&self, r.LeftUserID).Error; err != nil {
			return nil, err
		}
		if err := s.db.First(&other, r.RightUserID).Error; err != nil {
			return nil, err
		}

		req := FriendRequest{RequestedAt: r.UpdatedAt}
		if r.ActionUserID == userID {
			req.Direction = DirectionOutgoing
			req.Sender, req.Receiver = self, other
		} else {
			req.Direction = DirectionIncoming
			req.Sender, req.Receiver = other, self
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// FriendSuggestions returns suggestions involving the user, as receiver or
// as suggester. Each suggestion is stored as a symmetric pair, so rows are
// canonically ordered (left < right) to surface each one exactly once. The
// suggester is whichever of the three involved users matches the action
// user; the other two are the receivers.
func (s *Service) FriendSuggestions(userID uint) ([]FriendSuggestion, error) {
	var rows []models.Friendship
	err := s.db.
		Where("state = ? AND left_user_id < right_user_id", models.StateSuggested).
		Where("left_user_id = ? OR right_user_id = ? OR action_user_id = ?",
			userID, userID, userID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	suggestions := make([]FriendSuggestion, 0, len(rows))
	for _, r := range rows {
		var involved []models.User
		ids := []uint{r.LeftUserID, r.RightUserID, r.ActionUserID}
		if err := s.db.Where("id IN ?", ids).Find(&involved).Error; err != nil {
			return nil, err
		}

		sug := FriendSuggestion{CreatedAt: r.CreatedAt}
		for _, u := range involved {
			if u.ID == r.ActionUserID {
				sug.Suggester = u
			} else {
				sug.Receivers = append(sug.Receivers, u)
			}
		}
		suggestions = append(suggestions, sug)
	}
	return suggestions, nil
}
