package relationship

import (
	"time"

	"socialgraph/backend/internal/models"

	"gorm.io/gorm"
)

// Pair is both halves of one logical friendship: the (id1, id2) row followed
// by the (id2, id1) row. An empty Pair means no relationship exists.
// Both halves always carry the same state, action user and timestamps.
type Pair []models.Friendship

// Empty reports whether the pair holds no rows.
func (p Pair) Empty() bool { return len(p) == 0 }

// State returns the shared state of the pair, or "" when empty.
func (p Pair) State() models.FriendshipState {
	if p.Empty() {
		return ""
	}
	return p[0].State
}

// ActionUserID returns the user whose action produced the current state,
// or 0 when the pair is empty.
func (p Pair) ActionUserID() uint {
	if p.Empty() {
		return 0
	}
	return p[0].ActionUserID
}

// Ledger owns the friendships table. It only provides data-access
// primitives on unordered user pairs; which transitions are legal is the
// Service's concern. Every mutation touches both halves of a pair in a
// single statement so that no caller can ever observe a half-updated pair.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a Ledger on the given database handle, which may be a
// transaction.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Get fetches the pair for the unordered user pair (id1, id2). The lookup is
// order-independent: Get(a, b) and Get(b, a) return the same logical pair.
func (l *Ledger) Get(id1, id2 uint) (Pair, error) {
	var rows Pair
	err := l.db.
		Where("(left_user_id = ? AND right_user_id = ?) OR (left_user_id = ? AND right_user_id = ?)",
			id1, id2, id2, id1).
		Order("left_user_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Build constructs both halves of a new pair in memory with a shared
// timestamp. It does not look for an existing pair; the composite primary
// key is the backstop against duplicates.
func (l *Ledger) Build(id1, id2, actionUserID uint, state models.FriendshipState) Pair {
	now := time.Now().UTC()
	return Pair{
		{LeftUserID: id1, RightUserID: id2, ActionUserID: actionUserID, State: state, CreatedAt: now, UpdatedAt: now},
		{LeftUserID: id2, RightUserID: id1, ActionUserID: actionUserID, State: state, CreatedAt: now, UpdatedAt: now},
	}
}

// Create inserts both halves of a built pair in one statement.
func (l *Ledger) Create(p Pair) error {
	return l.db.Create(&p).Error
}

// Update sets the action user and state on both halves of an already-fetched
// pair and persists them. It does not re-fetch from storage.
func (l *Ledger) Update(p Pair, actionUserID uint, state models.FriendshipState) (Pair, error) {
	now := time.Now().UTC()
	for i := range p {
		p[i].ActionUserID = actionUserID
		p[i].State = state
		p[i].UpdatedAt = now
	}
	if err := l.db.Save(&p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes both halves of the pair and returns the number of rows
// removed: 2 when the pair existed, 0 when it did not.
func (l *Ledger) Delete(id1, id2 uint) (int64, error) {
	res := l.db.
		Where("(left_user_id = ? AND right_user_id = ?) OR (left_user_id = ? AND right_user_id = ?)",
			id1, id2, id2, id1).
		Delete(&models.Friendship{})
	return res.RowsAffected, res.Error
}

// Upsert updates the existing pair to the given action user and state, or
// builds and inserts a new one when none exists.
func (l *Ledger) Upsert(id1, id2, actionUserID uint, state models.FriendshipState) (Pair, error) {
	p, err := l.Get(id1, id2)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return l.Update(p, actionUserID, state)
	}
	p = l.Build(id1, id2, actionUserID, state)
	if err := l.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}
