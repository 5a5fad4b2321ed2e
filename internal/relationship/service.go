package relationship

import (
	"errors"
	"time"

	"socialgraph/backend/internal/models"

	"gorm.io/gorm"
)

// DefaultSnoozeDays is how long a snooze lasts when the caller does not say.
const DefaultSnoozeDays = 30

// Service is the policy layer over the Ledger and the FollowGraph. It owns
// the transition table: which operations are legal in which state, and the
// side effects (auto-follow on accept, auto-unfollow on block).
//
// Business-rule violations are not errors. Every verb returns its zero
// result (nil pair, nil edge, 0 rows) when the operation does not apply,
// and callers branch on that. Errors are reserved for storage failures.
type Service struct {
	db *gorm.DB
}

// NewService creates a Service on the given database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// runTx executes fn in a transaction. When a concurrent writer wins an
// insert race on a composite primary key, the transaction is re-run exactly
// once: the second pass sees the committed pair and branches to an update
// or a no-op instead.
func (s *Service) runTx(fn func(tx *gorm.DB) error) error {
	err := s.db.Transaction(fn)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = s.db.Transaction(fn)
	}
	return err
}

// SendFriendRequest moves the pair from NONE or SUGGESTED to PENDING with
// the caller as action user. Any other existing state makes it a no-op.
func (s *Service) SendFriendRequest(selfID, otherID uint) (Pair, error) {
	var out Pair
	err := s.runTx(func(tx *gorm.DB) error {
		out = nil
		l := NewLedger(tx)
		p, err := l.Get(selfID, otherID)
		if err != nil {
			return err
		}
		switch p.State() {
		case models.StateAccepted, models.StateBlocked, models.StatePending:
			return nil
		}
		// none or suggested: update the suggestion if one exists,
		// otherwise build a fresh pending pair
		out, err = l.Upsert(selfID, otherID, selfID, models.StatePending)
		return err
	})
	return out, err
}

// Accept turns a pending request into a friendship. The requester cannot
// accept their own request. Accepting makes the two users follow each other.
func (s *Service) Accept(selfID, otherID uint) (Pair, error) {
	var out Pair
	err := s.runTx(func(tx *gorm.DB) error {
		out = nil
		l := NewLedger(tx)
		p, err := l.Get(selfID, otherID)
		if err != nil {
			return err
		}
		if p.State() != models.StatePending || p.ActionUserID() == selfID {
			return nil
		}
		if err := NewFollowGraph(tx).EnsureMutual(selfID, otherID); err != nil {
			return err
		}
		out, err = l.Update(p, selfID, models.StateAccepted)
		return err
	})
	return out, err
}

// DeclineOrCancel removes a pending request. Either party may call it: the
// receiver declines, the sender cancels. Returns the number of rows removed.
func (s *Service) DeclineOrCancel(selfID, otherID uint) (int64, error) {
	var removed int64
	err := s.runTx(func(tx *gorm.DB) error {
		removed = 0
		l := NewLedger(tx)
		p, err := l.Get(selfID, otherID)
		if err != nil {
			return err
		}
		if p.State() != models.StatePending {
			return nil
		}
		removed, err = l.Delete(selfID, otherID)
		return err
	})
	return removed, err
}

// Unfriend dissolves an accepted friendship. Follow edges are left alone:
// ex-friends keep following each other until they unfollow.
func (s *Service) Unfriend(selfID, otherID uint) (int64, error) {
	var removed int64
	err := s.runTx(func(tx *gorm.DB) error {
		removed = 0
		l := NewLedger(tx)
		p, err := l.Get(selfID, otherID)
		if err != nil {
			return err
		}
		if p.State() != models.StateAccepted {
			return nil
		}
		removed, err = l.Delete(selfID, otherID)
		return err
	})
	return removed, err
}

// Block puts the pair into BLOCKED regardless of its current state, except
// when it is already blocked. Any follow edges between the two users are
// torn down in the same transaction.
func (s *Service) Block(selfID, otherID uint) (Pair, error) {
	var out Pair
	err := s.runTx(func(tx *gorm.DB) error {
		out = nil
		l := NewLedger(tx)
		p, err := l.Get(selfID, otherID)
		if err != nil {
			return err
		}
		if p.State() == models.StateBlocked {
			return nil
		}
		if _, err := NewFollowGraph(tx).DeleteBetween(selfID, otherID); err != nil {
			return err
		}
		out, err = l.Upsert(selfID, otherID, selfID, models.StateBlocked)
		return err
	})
	return out, err
}

// Unblock removes a block. Only the user who placed the block may lift it;
// for anyone else the call is a no-op. Returns the number of rows removed.
func (s *Service) Unblock(selfID, otherID uint) (int64, error) {
	var removed int64
	err := s.runTx(func(tx *gorm.DB) error {
		removed = 0
		l := NewLedger(tx)
		p, err := l.Get(selfID, otherID)
		if err != nil {
			return err
		}
		if p.State() != models.StateBlocked || p.ActionUserID() != selfID {
			return nil
		}
		removed, err = l.Delete(selfID, otherID)
		return err
	})
	return removed, err
}

// Suggest introduces two users to each other. The suggester must be a
// mutual friend of both, and the two must have no existing relationship of
// any kind.
func (s *Service) Suggest(suggesterID, id1, id2 uint) (Pair, error) {
	var out Pair
	err := s.runTx(func(tx *gorm.DB) error {
		out = nil
		l := NewLedger(tx)
		p, err := l.Get(id1, id2)
		if err != nil {
			return err
		}
		if !p.Empty() {
			return nil
		}
		ok, err := isMutualFriendOf(tx, suggesterID, id1, id2)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		out = l.Build(id1, id2, suggesterID, models.StateSuggested)
		return l.Create(out)
	})
	return out, err
}

// Follow creates a directional follow edge. Already following, or a block
// in either direction between the two users, makes it a no-op.
func (s *Service) Follow(selfID, otherID uint) (*models.Follower, error) {
	var out *models.Follower
	err := s.runTx(func(tx *gorm.DB) error {
		out = nil
		g := NewFollowGraph(tx)
		existing, err := g.Get(selfID, otherID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		p, err := NewLedger(tx).Get(selfID, otherID)
		if err != nil {
			return err
		}
		if p.State() == models.StateBlocked {
			return nil
		}
		out, err = g.Create(selfID, otherID)
		return err
	})
	return out, err
}

// Unfollow removes the directional follow edge, returning 1 when it existed.
func (s *Service) Unfollow(selfID, otherID uint) (int64, error) {
	var removed int64
	err := s.runTx(func(tx *gorm.DB) error {
		var err error
		removed, err = NewFollowGraph(tx).Delete(selfID, otherID)
		return err
	})
	return removed, err
}

// Snooze mutes a followed user for the given number of days. The caller
// must be following and not already inside an unexpired snooze window.
func (s *Service) Snooze(selfID, otherID uint, days int) (*models.Follower, error) {
	if days <= 0 {
		days = DefaultSnoozeDays
	}
	var out *models.Follower
	err := s.runTx(func(tx *gorm.DB) error {
		out = nil
		g := NewFollowGraph(tx)
		f, err := g.Get(selfID, otherID)
		if err != nil {
			return err
		}
		if f == nil || snoozing(f) {
			return nil
		}
		exp := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
		f.IsSnoozed = true
		f.Expiration = &exp
		if err := g.Save(f); err != nil {
			return err
		}
		out = f
		return nil
	})
	return out, err
}

// Unsnooze lifts an active snooze. A no-op when the edge is missing or not
// currently snoozed.
func (s *Service) Unsnooze(selfID, otherID uint) (*models.Follower, error) {
	var out *models.Follower
	err := s.runTx(func(tx *gorm.DB) error {
		out = nil
		g := NewFollowGraph(tx)
		f, err := g.Get(selfID, otherID)
		if err != nil {
			return err
		}
		if f == nil || !snoozing(f) {
			return nil
		}
		f.IsSnoozed = false
		f.Expiration = nil
		if err := g.Save(f); err != nil {
			return err
		}
		out = f
		return nil
	})
	return out, err
}

// snoozing reports whether the edge is inside an unexpired snooze window.
// A lapsed snooze counts as not snoozed, so it can be snoozed again without
// an explicit unsnooze.
func snoozing(f *models.Follower) bool {
	return f != nil && f.IsSnoozed && f.Expiration != nil && f.Expiration.After(time.Now().UTC())
}
