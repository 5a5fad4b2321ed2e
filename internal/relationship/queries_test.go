package relationship

import (
	"errors"
	"testing"
)

func TestMutualFriendsIsExactIntersection(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 4)
	svc := NewService(db)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	befriend(t, svc, a, c)
	befriend(t, svc, b, c)
	befriend(t, svc, a, d) // friend of a only

	mutual, err := svc.MutualFriends(a, b)
	if err != nil {
		t.Fatalf("mutual friends: %v", err)
	}
	if len(mutual) != 1 || mutual[0].ID != c {
		got := make([]uint, 0, len(mutual))
		for _, u := range mutual {
			got = append(got, u.ID)
		}
		t.Fatalf("mutual friends = %v, want [%d]", got, c)
	}
}

func TestIsMutualFriendOf(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 3)
	svc := NewService(db)

	befriend(t, svc, ids[2], ids[0])

	ok, err := svc.IsMutualFriendOf(ids[2], ids[0], ids[1])
	if err != nil {
		t.Fatalf("is mutual friend: %v", err)
	}
	if ok {
		t.Error("one friendship must not count as mutual")
	}

	befriend(t, svc, ids[2], ids[1])
	ok, err = svc.IsMutualFriendOf(ids[2], ids[0], ids[1])
	if err != nil {
		t.Fatalf("is mutual friend: %v", err)
	}
	if !ok {
		t.Error("expected mutual friend of both")
	}
}

func TestFriendsAndBlockedLists(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 3)
	svc := NewService(db)

	befriend(t, svc, ids[0], ids[1])
	if _, err := svc.Block(ids[0], ids[2]); err != nil {
		t.Fatalf("block: %v", err)
	}

	friends, err := svc.Friends(ids[0])
	if err != nil {
		t.Fatalf("friends: %v", err)
	}
	if len(friends) != 1 || friends[0].ID != ids[1] {
		t.Errorf("friends of %d = %d users", ids[0], len(friends))
	}

	blocked, err := svc.BlockedUsers(ids[0])
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if len(blocked) != 1 || blocked[0].ID != ids[2] {
		t.Errorf("blocked by %d = %d users", ids[0], len(blocked))
	}

	// the blocked party does not see the block as their own
	blocked, err = svc.BlockedUsers(ids[2])
	if err != nil {
		t.Fatalf("blocked (other side): %v", err)
	}
	if len(blocked) != 0 {
		t.Errorf("blocked party lists %d blocked users, want 0", len(blocked))
	}
}

func TestFriendRequestsInboxAndOutbox(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 3)
	svc := NewService(db)

	if _, err := svc.SendFriendRequest(ids[0], ids[1]); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.SendFriendRequest(ids[2], ids[0]); err != nil {
		t.Fatalf("request: %v", err)
	}

	requests, err := svc.FriendRequests(ids[0])
	if err != nil {
		t.Fatalf("friend requests: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}

	byDirection := make(map[RequestDirection]FriendRequest, 2)
	for _, r := range requests {
		byDirection[r.Direction] = r
	}

	out, ok := byDirection[DirectionOutgoing]
	if !ok {
		t.Fatal("missing outgoing request")
	}
	if out.Sender.ID != ids[0] || out.Receiver.ID != ids[1] {
		t.Errorf("outgoing request %d -> %d, want %d -> %d",
			out.Sender.ID, out.Receiver.ID, ids[0], ids[1])
	}

	in, ok := byDirection[DirectionIncoming]
	if !ok {
		t.Fatal("missing incoming request")
	}
	if in.Sender.ID != ids[2] || in.Receiver.ID != ids[0] {
		t.Errorf("incoming request %d -> %d, want %d -> %d",
			in.Sender.ID, in.Receiver.ID, ids[2], ids[0])
	}
}

func TestFriendRequestCarriesRequestTime(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 3)
	svc := NewService(db)

	befriend(t, svc, ids[2], ids[0])
	befriend(t, svc, ids[2], ids[1])
	if p, err := svc.Suggest(ids[2], ids[0], ids[1]); err != nil || p.Empty() {
		t.Fatalf("suggest: pair=%v err=%v", p, err)
	}
	if p, err := svc.SendFriendRequest(ids[0], ids[1]); err != nil || p.Empty() {
		t.Fatalf("promote suggestion: pair=%v err=%v", p, err)
	}

	pair, err := svc.Get(ids[0], ids[1])
	if err != nil || len(pair) != 2 {
		t.Fatalf("get pair: rows=%d err=%v", len(pair), err)
	}
	requests, err := svc.FriendRequests(ids[0])
	if err != nil || len(requests) != 1 {
		t.Fatalf("friend requests: n=%d err=%v", len(requests), err)
	}

	// the time shown is when the pair became pending, not when the
	// underlying suggestion rows were first created
	if !requests[0].RequestedAt.Equal(pair[0].UpdatedAt) {
		t.Errorf("RequestedAt = %v, want promotion time %v",
			requests[0].RequestedAt, pair[0].UpdatedAt)
	}
}

func TestFriendSuggestionsSurfaceOncePerPair(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 3)
	svc := NewService(db)
	suggester := ids[2]

	befriend(t, svc, suggester, ids[0])
	befriend(t, svc, suggester, ids[1])
	if p, err := svc.Suggest(suggester, ids[0], ids[1]); err != nil || p.Empty() {
		t.Fatalf("suggest: pair=%v err=%v", p, err)
	}

	// the suggestion is stored as two rows, but every involved user sees it once
	for _, viewer := range ids {
		suggestions, err := svc.FriendSuggestions(viewer)
		if err != nil {
			t.Fatalf("suggestions for %d: %v", viewer, err)
		}
		if len(suggestions) != 1 {
			t.Fatalf("suggestions for %d = %d, want 1", viewer, len(suggestions))
		}

		s := suggestions[0]
		if s.Suggester.ID != suggester {
			t.Errorf("suggester = %d, want %d", s.Suggester.ID, suggester)
		}
		if len(s.Receivers) != 2 {
			t.Fatalf("receivers = %d, want 2", len(s.Receivers))
		}
		got := map[uint]bool{s.Receivers[0].ID: true, s.Receivers[1].ID: true}
		if !got[ids[0]] || !got[ids[1]] {
			t.Errorf("receivers = %v, want the two suggested users", got)
		}
	}
}

func TestFollowersAndFollowings(t *testing.T) {
	db := newTestDB(t)
	ids := seedUsers(t, db, 3)
	svc := NewService(db)

	if _, err := svc.Follow(ids[1], ids[0]); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := svc.Follow(ids[2], ids[0]); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := svc.Follow(ids[0], ids[1]); err != nil {
		t.Fatalf("follow: %v", err)
	}

	followers, err := svc.Followers(ids[0])
	if err != nil {
		t.Fatalf("followers: %v", err)
	}
	if len(followers) != 2 {
		t.Errorf("followers = %d, want 2", len(followers))
	}

	followings, err := svc.Followings(ids[0])
	if err != nil {
		t.Fatalf("followings: %v", err)
	}
	if len(followings) != 1 || followings[0].ID != ids[1] {
		t.Errorf("followings = %d users", len(followings))
	}
}

func TestParseUserID(t *testing.T) {
	valid := map[string]uint{
		"1":  1,
		"42": 42,
	}
	for raw, want := range valid {
		id, err := ParseUserID(raw)
		if err != nil || id != want {
			t.Errorf("ParseUserID(%q) = %d, %v; want %d, nil", raw, id, err, want)
		}
	}

	invalid := []string{"", "0", "-1", "abc", "1.5", "99999999999999999999"}
	for _, raw := range invalid {
		if _, err := ParseUserID(raw); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("ParseUserID(%q) error = %v, want ErrInvalidIdentifier", raw, err)
		}
	}
}
