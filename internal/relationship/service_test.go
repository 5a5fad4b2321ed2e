package relationship

import (
	"errors"
	"testing"
	"time"

	"socialgraph/backend/internal/models"

	"gorm.io/gorm"
)

func TestRequestThenAcceptCreatesFriendshipAndMutualFollows(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 5)
	svc := NewService(db)

	pair, err := svc.SendFriendRequest(ids[0], ids[1])
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	if pair.State() != models.StatePending || pair.ActionUserID() != ids[0] {
		t.Fatalf("request pair = %v/%d", pair.State(), pair.ActionUserID())
	}

	// the requester cannot accept their own request
	pair, err = svc.Accept(ids[0], ids[1])
	if err != nil {
		t.Fatalf("self-accept: %v", err)
	}
	if !pair.Empty() {
		t.Fatal("self-accept must be a no-op")
	}

	pair, err = svc.Accept(ids[1], ids[0])
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if pair.State() != models.StateAccepted {
		t.Fatalf("state after accept = %v", pair.State())
	}

	got, err := svc.Get(ids[0], ids[1])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got.State() != models.StateAccepted {
		t.Fatalf("stored pair = %d rows, state %v", len(got), got.State())
	}

	for _, d := range [][2]uint{{ids[0], ids[1]}, {ids[1], ids[0]}} {
		following, err := svc.IsFollowing(d[0], d[1])
		if err != nil {
			t.Fatalf("is following: %v", err)
		}
		if !following {
			t.Errorf("accept did not create follow edge (%d -> %d)", d[0], d[1])
		}
	}
}

func TestSendFriendRequestIsNoOpInActiveStates(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 2)
	svc := NewService(db)

	if _, err := svc.SendFriendRequest(ids[0], ids[1]); err != nil {
		t.Fatalf("send request: %v", err)
	}

	// duplicate request, either direction
	pair, err := svc.SendFriendRequest(ids[1], ids[0])
	if err != nil {
		t.Fatalf("duplicate request: %v", err)
	}
	if !pair.Empty() {
		t.Fatal("request over a pending pair must be a no-op")
	}

	if _, err := svc.Accept(ids[1], ids[0]); err != nil {
		t.Fatalf("accept: %v", err)
	}
	pair, err = svc.SendFriendRequest(ids[0], ids[1])
	if err != nil {
		t.Fatalf("request over accepted: %v", err)
	}
	if !pair.Empty() {
		t.Fatal("request over an accepted pair must be a no-op")
	}
}

func TestSendFriendRequestPromotesSuggestion(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 3)
	svc := NewService(db)
	befriend(t, svc, ids[2], ids[0])
	befriend(t, svc, ids[2], ids[1])

	if p, err := svc.Suggest(ids[2], ids[0], ids[1]); err != nil || p.Empty() {
		t.Fatalf("suggest: pair=%v err=%v", p, err)
	}

	pair, err := svc.SendFriendRequest(ids[0], ids[1])
	if err != nil {
		t.Fatalf("request over suggestion: %v", err)
	}
	if pair.State() != models.StatePending || pair.ActionUserID() != ids[0] {
		t.Fatalf("suggestion was not promoted: %v/%d", pair.State(), pair.ActionUserID())
	}

	// still exactly one pair for the two users
	if n := countRows(t, db, &models.Friendship{},
		"(left_user_id = ? AND right_user_id = ?) OR (left_user_id = ? AND right_user_id = ?)",
		ids[0], ids[1], ids[1], ids[0]); n != 2 {
		t.Errorf("pair rows = %d, want 2", n)
	}
}

func TestDeclineOrCancelWorksFromBothSides(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 2)
	svc := NewService(db)

	// receiver declines
	if _, err := svc.SendFriendRequest(ids[0], ids[1]); err != nil {
		t.Fatalf("send request: %v", err)
	}
	removed, err := svc.DeclineOrCancel(ids[1], ids[0])
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if removed != 2 {
		t.Errorf("decline removed = %d, want 2", removed)
	}

	// sender cancels
	if _, err := svc.SendFriendRequest(ids[0], ids[1]); err != nil {
		t.Fatalf("re-send request: %v", err)
	}
	removed, err = svc.DeclineOrCancel(ids[0], ids[1])
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if removed != 2 {
		t.Errorf("cancel removed = %d, want 2", removed)
	}

	// nothing pending anymore
	removed, err = svc.DeclineOrCancel(ids[0], ids[1])
	if err != nil {
		t.Fatalf("decline with no request: %v", err)
	}
	if removed != 0 {
		t.Errorf("decline with no request removed = %d, want 0", removed)
	}
}

func TestUnfriendRequiresAcceptedState(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 2)
	svc := NewService(db)

	if _, err := svc.SendFriendRequest(ids[0], ids[1]); err != nil {
		t.Fatalf("send request: %v", err)
	}
	removed, err := svc.Unfriend(ids[0], ids[1])
	if err != nil {
		t.Fatalf("unfriend pending: %v", err)
	}
	if removed != 0 {
		t.Error("unfriend must not remove a pending pair")
	}

	if _, err := svc.Accept(ids[1], ids[0]); err != nil {
		t.Fatalf("accept: %v", err)
	}
	removed, err = svc.Unfriend(ids[0], ids[1])
	if err != nil {
		t.Fatalf("unfriend: %v", err)
	}
	if removed != 2 {
		t.Errorf("unfriend removed = %d, want 2", removed)
	}
}

func TestBlockPrecedence(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 5)
	svc := NewService(db)
	u3, u4 := ids[2], ids[3]

	pair, err := svc.Block(u3, u4)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if pair.State() != models.StateBlocked || pair.ActionUserID() != u3 {
		t.Fatalf("block pair = %v/%d", pair.State(), pair.ActionUserID())
	}

	// blocking an already blocked pair is a no-op, even from the other side
	pair, err = svc.Block(u4, u3)
	if err != nil {
		t.Fatalf("re-block: %v", err)
	}
	if !pair.Empty() {
		t.Fatal("block over a blocked pair must be a no-op")
	}

	// the blocked pair refuses requests and follows
	if p, err := svc.SendFriendRequest(u4, u3); err != nil || !p.Empty() {
		t.Fatalf("request across block: pair=%v err=%v", p, err)
	}
	if f, err := svc.Follow(u4, u3); err != nil || f != nil {
		t.Fatalf("follow across block: edge=%v err=%v", f, err)
	}

	// and cannot be suggested
	befriend(t, svc, ids[4], u3)
	befriend(t, svc, ids[4], u4)
	if p, err := svc.Suggest(ids[4], u3, u4); err != nil || !p.Empty() {
		t.Fatalf("suggest across block: pair=%v err=%v", p, err)
	}
}

func TestBlockTearsDownFollows(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 2)
	svc := NewService(db)
	befriend(t, svc, ids[0], ids[1]) // leaves mutual follow edges behind

	if _, err := svc.Block(ids[0], ids[1]); err != nil {
		t.Fatalf("block: %v", err)
	}

	if n := countRows(t, db, &models.Follower{},
		"(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)",
		ids[0], ids[1], ids[1], ids[0]); n != 0 {
		t.Errorf("follow edges after block = %d, want 0", n)
	}
}

func TestUnblockOnlyByBlocker(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 2)
	svc := NewService(db)

	if _, err := svc.Block(ids[0], ids[1]); err != nil {
		t.Fatalf("block: %v", err)
	}

	removed, err := svc.Unblock(ids[1], ids[0])
	if err != nil {
		t.Fatalf("unblock by blocked party: %v", err)
	}
	if removed != 0 {
		t.Error("only the blocker may unblock")
	}

	removed, err = svc.Unblock(ids[0], ids[1])
	if err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if removed != 2 {
		t.Errorf("unblock removed = %d, want 2", removed)
	}

	// the pair is free again
	if p, err := svc.SendFriendRequest(ids[1], ids[0]); err != nil || p.Empty() {
		t.Fatalf("request after unblock: pair=%v err=%v", p, err)
	}
}

func TestSuggestRequiresMutualFriendAndCleanSlate(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 3)
	svc := NewService(db)

	// not a mutual friend yet
	if p, err := svc.Suggest(ids[2], ids[0], ids[1]); err != nil || !p.Empty() {
		t.Fatalf("suggest without mutual friendship: pair=%v err=%v", p, err)
	}

	befriend(t, svc, ids[2], ids[0])
	befriend(t, svc, ids[2], ids[1])

	pair, err := svc.Suggest(ids[2], ids[0], ids[1])
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if pair.State() != models.StateSuggested || pair.ActionUserID() != ids[2] {
		t.Fatalf("suggestion pair = %v/%d", pair.State(), pair.ActionUserID())
	}

	// a second suggestion for the same pair is a no-op
	if p, err := svc.Suggest(ids[2], ids[0], ids[1]); err != nil || !p.Empty() {
		t.Fatalf("duplicate suggest: pair=%v err=%v", p, err)
	}
}

func TestFollowAndUnfollowAreDirectional(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 2)
	svc := NewService(db)

	edge, err := svc.Follow(ids[0], ids[1])
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if edge == nil {
		t.Fatal("follow returned no edge")
	}

	// no mirror edge appears
	if back, err := svc.IsFollowing(ids[1], ids[0]); err != nil || back {
		t.Fatalf("unexpected mirror edge: following=%v err=%v", back, err)
	}

	// following again is a no-op
	if e, err := svc.Follow(ids[0], ids[1]); err != nil || e != nil {
		t.Fatalf("duplicate follow: edge=%v err=%v", e, err)
	}

	removed, err := svc.Unfollow(ids[0], ids[1])
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if removed != 1 {
		t.Errorf("unfollow removed = %d, want 1", removed)
	}
	if removed, _ := svc.Unfollow(ids[0], ids[1]); removed != 0 {
		t.Errorf("second unfollow removed = %d, want 0", removed)
	}
}

func TestSnoozeLifecycle(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 2)
	svc := NewService(db)

	// cannot snooze without following
	if e, err := svc.Snooze(ids[0], ids[1], 30); err != nil || e != nil {
		t.Fatalf("snooze without follow: edge=%v err=%v", e, err)
	}

	if _, err := svc.Follow(ids[0], ids[1]); err != nil {
		t.Fatalf("follow: %v", err)
	}

	edge, err := svc.Snooze(ids[0], ids[1], 30)
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	if edge == nil || !edge.IsSnoozed || edge.Expiration == nil {
		t.Fatalf("snooze did not set the window: %+v", edge)
	}
	want := time.Now().UTC().Add(30 * 24 * time.Hour)
	if d := edge.Expiration.Sub(want); d < -time.Minute || d > time.Minute {
		t.Errorf("expiration %v not near %v", edge.Expiration, want)
	}

	if ok, err := svc.IsSnoozing(ids[0], ids[1]); err != nil || !ok {
		t.Fatalf("IsSnoozing after snooze = %v, %v", ok, err)
	}

	// double snooze is a no-op
	if e, err := svc.Snooze(ids[0], ids[1], 7); err != nil || e != nil {
		t.Fatalf("double snooze: edge=%v err=%v", e, err)
	}

	edge, err = svc.Unsnooze(ids[0], ids[1])
	if err != nil {
		t.Fatalf("unsnooze: %v", err)
	}
	if edge == nil || edge.IsSnoozed || edge.Expiration != nil {
		t.Fatalf("unsnooze did not clear the window: %+v", edge)
	}

	if ok, err := svc.IsSnoozing(ids[0], ids[1]); err != nil || ok {
		t.Fatalf("IsSnoozing after unsnooze = %v, %v", ok, err)
	}

	// unsnooze again is a no-op, re-snooze works
	if e, err := svc.Unsnooze(ids[0], ids[1]); err != nil || e != nil {
		t.Fatalf("double unsnooze: edge=%v err=%v", e, err)
	}
	if e, err := svc.Snooze(ids[0], ids[1], 7); err != nil || e == nil {
		t.Fatalf("re-snooze: edge=%v err=%v", e, err)
	}
}

func TestRemoveUserCascades(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 4)
	svc := NewService(db)
	x := ids[0]

	befriend(t, svc, x, ids[1])
	if _, err := svc.SendFriendRequest(ids[2], x); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.Follow(ids[3], x); err != nil {
		t.Fatalf("follow: %v", err)
	}
	// x suggested a pair they are not part of
	befriend(t, svc, x, ids[3])
	if p, err := svc.Suggest(x, ids[1], ids[3]); err != nil || p.Empty() {
		t.Fatalf("suggest: pair=%v err=%v", p, err)
	}

	if err := svc.RemoveUser(x); err != nil {
		t.Fatalf("remove user: %v", err)
	}

	if n := countRows(t, db, &models.Friendship{},
		"left_user_id = ? OR right_user_id = ? OR action_user_id = ?", x, x, x); n != 0 {
		t.Errorf("friendship rows touching removed user = %d, want 0", n)
	}
	if n := countRows(t, db, &models.Follower{},
		"follower_id = ? OR followed_id = ?", x, x); n != 0 {
		t.Errorf("follow rows touching removed user = %d, want 0", n)
	}
	if n := countRows(t, db, &models.User{}, "id = ?", x); n != 0 {
		t.Errorf("user row still present")
	}

	// no orphaned half-pairs anywhere
	var rows []models.Friendship
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load remaining rows: %v", err)
	}
	seen := make(map[[2]uint]bool, len(rows))
	for _, r := range rows {
		seen[[2]uint{r.LeftUserID, r.RightUserID}] = true
	}
	for _, r := range rows {
		if !seen[[2]uint{r.RightUserID, r.LeftUserID}] {
			t.Errorf("row (%d,%d) has no mirror", r.LeftUserID, r.RightUserID)
		}
	}
}

func TestCreateDuplicatePairSurfacesDuplicatedKey(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 2)
	l := NewLedger(db)

	if err := l.Create(l.Build(ids[0], ids[1], ids[0], models.StatePending)); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// the composite primary key is the backstop against a lost insert race;
	// TranslateError must turn the violation into the sentinel runTx keys on
	err := l.Create(l.Build(ids[0], ids[1], ids[0], models.StatePending))
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second create error = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestRunTxRetriesDuplicateInsertExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	// a first-pass duplicate failure gets one more pass, which succeeds
	calls := 0
	err := svc.runTx(func(tx *gorm.DB) error {
		calls++
		if calls == 1 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retried transaction: %v", err)
	}
	if calls != 2 {
		t.Errorf("transaction ran %d times, want 2", calls)
	}

	// a persistent duplicate is not retried forever; the error propagates
	calls = 0
	err = svc.runTx(func(tx *gorm.DB) error {
		calls++
		return gorm.ErrDuplicatedKey
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("persistent duplicate error = %v, want gorm.ErrDuplicatedKey", err)
	}
	if calls != 2 {
		t.Errorf("transaction ran %d times, want 2", calls)
	}

	// other errors pass straight through without a second pass
	calls = 0
	boom := errors.New("storage unavailable")
	err = svc.runTx(func(tx *gorm.DB) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("unrelated error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("transaction ran %d times, want 1", calls)
	}
}

// befriend drives two users through request and accept.
func befriend(t *testing.T, svc *Service, a, b uint) {
	t.Helper()

	if p, err := svc.SendFriendRequest(a, b); err != nil || p.Empty() {
		t.Fatalf("befriend %d->%d request: pair=%v err=%v", a, b, p, err)
	}
	if p, err := svc.Accept(b, a); err != nil || p.Empty() {
		t.Fatalf("befriend %d->%d accept: pair=%v err=%v", a, b, p, err)
	}
}
