package relationship

import (
	"errors"
	"time"

	"socialgraph/backend/internal/models"

	"gorm.io/gorm"
)

// FollowGraph owns the followers table. Follow edges are directional and
// carry no pairing semantics: a mirror edge exists only if the other user
// also follows back.
type FollowGraph struct {
	db *gorm.DB
}

// NewFollowGraph creates a FollowGraph on the given database handle, which
// may be a transaction.
func NewFollowGraph(db *gorm.DB) *FollowGraph {
	return &FollowGraph{db: db}
}

// Get fetches the single directional edge, or nil when it does not exist.
func (g *FollowGraph) Get(followerID, followedID uint) (*models.Follower, error) {
	var f models.Follower
	err := g.db.
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts one directional edge.
func (g *FollowGraph) Create(followerID, followedID uint) (*models.Follower, error) {
	now := time.Now().UTC()
	f := models.Follower{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := g.db.Create(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// Save persists snooze mutations made on a fetched edge.
func (g *FollowGraph) Save(f *models.Follower) error {
	f.UpdatedAt = time.Now().UTC()
	return g.db.Save(f).Error
}

// Delete removes exactly one directional edge and returns the number of
// rows removed (0 or 1).
func (g *FollowGraph) Delete(followerID, followedID uint) (int64, error) {
	res := g.db.
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follower{})
	return res.RowsAffected, res.Error
}

// DeleteBetween removes the edges in both directions between two users,
// returning how many existed.
func (g *FollowGraph) DeleteBetween(id1, id2 uint) (int64, error) {
	res := g.db.
		Where("(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)",
			id1, id2, id2, id1).
		Delete(&models.Follower{})
	return res.RowsAffected, res.Error
}

// DeleteForUser removes every edge where the user appears on either side.
func (g *FollowGraph) DeleteForUser(userID uint) (int64, error) {
	res := g.db.
		Where("follower_id = ? OR followed_id = ?", userID, userID).
		Delete(&models.Follower{})
	return res.RowsAffected, res.Error
}

// EnsureMutual makes sure both directional edges between the two users
// exist, clearing any snooze on edges that already do. Used when a friend
// request is accepted.
func (g *FollowGraph) EnsureMutual(id1, id2 uint) error {
	for _, d := range [][2]uint{{id1, id2}, {id2, id1}} {
		f, err := g.Get(d[0], d[1])
		if err != nil {
			return err
		}
		if f == nil {
			if _, err := g.Create(d[0], d[1]); err != nil {
				return err
			}
			continue
		}
		f.IsSnoozed = false
		f.Expiration = nil
		if err := g.Save(f); err != nil {
			return err
		}
	}
	return nil
}
