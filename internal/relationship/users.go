package relationship

import (
	"errors"
	"fmt"
	"strconv"

	"socialgraph/backend/internal/models"

	"gorm.io/gorm"
)

// ErrInvalidIdentifier is returned when a raw user id is not a well-formed
// positive integer.
var ErrInvalidIdentifier = errors.New("invalid user identifier")

// ParseUserID resolves a raw identifier into a user id. Anything that is not
// a positive integer fails with ErrInvalidIdentifier.
func ParseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return uint(id), nil
}

// UserByID fetches a user, or nil when no such user exists.
func (s *Service) UserByID(id uint) (*models.User, error) {
	var u models.User
	err := s.db.First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RemoveUser deletes a user and every edge touching them: friendship rows
// where they appear as left, right or action user (removing one half of a
// pair always removes its mirror, since the user holds the other side of
// that row), and follow rows in either direction. The whole cascade commits
// in one transaction so no orphaned half-pairs can survive a failure.
func (s *Service) RemoveUser(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("left_user_id = ? OR right_user_id = ? OR action_user_id = ?",
				userID, userID, userID).
			Delete(&models.Friendship{}).Error; err != nil {
			return err
		}
		if _, err := NewFollowGraph(tx).DeleteForUser(userID); err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
