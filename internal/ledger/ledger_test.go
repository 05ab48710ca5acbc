package ledger

import (
	"errors"
	"testing"

	"github.com/railgames/shareboard/internal/game"
)

func testShares() []game.ShareType {
	return []game.ShareType{
		{ID: 1, Label: "New York Central System", Color: "red", Max: 2},
		{ID: 2, Label: "Jersey Central Line", Color: "blue", Max: 1},
		{ID: 3, Label: "Lackawanna Erie Railway", Color: "green", Max: 3},
	}
}

func TestAvailability(t *testing.T) {
	shares := testShares()
	claims := []game.Claim{
		{PlayerID: "a", ShareID: 1},
		{PlayerID: "b", ShareID: 1},
		{PlayerID: "a", ShareID: 2},
	}

	counts := Availability(shares, claims)
	if len(counts) != len(shares) {
		t.Fatalf("want %d rows, got %d", len(shares), len(counts))
	}

	want := []struct{ claimed, remaining int }{
		{2, 0},
		{1, 0},
		{0, 3},
	}
	for i, w := range want {
		if counts[i].Claimed != w.claimed || counts[i].Remaining != w.remaining {
			t.Fatalf("share %d: got claimed=%d remaining=%d, want claimed=%d remaining=%d",
				counts[i].Share.ID, counts[i].Claimed, counts[i].Remaining, w.claimed, w.remaining)
		}
	}
}

func TestAvailability_RemainingNeverNegativeSequentially(t *testing.T) {
	// Under sequential operation every claim passes CanClaim first, so
	// remaining can never go below zero. (Concurrent stale-snapshot writers
	// can still drive claimed past max; see the session race test.)
	shares := []game.ShareType{{ID: 1, Label: "x", Max: 2}}
	var claims []game.Claim
	for i := 0; i < 10; i++ {
		if !CanClaim(1, shares, claims) {
			break
		}
		claims = append(claims, game.Claim{PlayerID: "a", ShareID: 1})
	}
	counts := Availability(shares, claims)
	if counts[0].Remaining < 0 {
		t.Fatalf("remaining went negative: %d", counts[0].Remaining)
	}
	if counts[0].Claimed != 2 {
		t.Fatalf("want claimed=2, got %d", counts[0].Claimed)
	}
}

func TestCanClaim(t *testing.T) {
	shares := testShares()
	cases := []struct {
		name    string
		shareID int
		claims  []game.Claim
		want    bool
	}{
		{
			name:    "open share",
			shareID: 3,
			claims:  nil,
			want:    true,
		},
		{
			name:    "one unit left",
			shareID: 1,
			claims:  []game.Claim{{PlayerID: "a", ShareID: 1}},
			want:    true,
		},
		{
			name:    "exhausted",
			shareID: 2,
			claims:  []game.Claim{{PlayerID: "a", ShareID: 2}},
			want:    false,
		},
		{
			name:    "over max from a past race still reads exhausted",
			shareID: 2,
			claims:  []game.Claim{{PlayerID: "a", ShareID: 2}, {PlayerID: "b", ShareID: 2}},
			want:    false,
		},
		{
			name:    "unknown share",
			shareID: 99,
			claims:  nil,
			want:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanClaim(tc.shareID, shares, tc.claims); got != tc.want {
				t.Fatalf("CanClaim(%d): got %v, want %v", tc.shareID, got, tc.want)
			}
		})
	}
}

func TestClaimsForPlayer_PreservesInsertionOrder(t *testing.T) {
	shares := testShares()
	claims := []game.Claim{
		{PlayerID: "a", ShareID: 3},
		{PlayerID: "b", ShareID: 1},
		{PlayerID: "a", ShareID: 1},
		{PlayerID: "a", ShareID: 3},
	}

	got := ClaimsForPlayer("a", claims, shares)
	wantIDs := []int{3, 1, 3}
	if len(got) != len(wantIDs) {
		t.Fatalf("want %d claims, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].ShareID != id {
			t.Fatalf("claim %d: got share %d, want %d", i, got[i].ShareID, id)
		}
	}
	if got[0].Label != "Lackawanna Erie Railway" || got[0].Color != "green" {
		t.Fatalf("catalog join failed: %+v", got[0])
	}
}

func TestClaimsForPlayer_UnknownShareYieldsEmptyLabel(t *testing.T) {
	claims := []game.Claim{{PlayerID: "a", ShareID: 42}}
	got := ClaimsForPlayer("a", claims, testShares())
	if len(got) != 1 {
		t.Fatalf("want 1 claim, got %d", len(got))
	}
	if got[0].Label != "" || got[0].Color != "" {
		t.Fatalf("unknown share should have empty label/color, got %+v", got[0])
	}
}

func TestRemoveOne(t *testing.T) {
	claims := []game.Claim{
		{PlayerID: "a", ShareID: 1},
		{PlayerID: "b", ShareID: 1},
		{PlayerID: "a", ShareID: 1},
	}

	got, err := RemoveOne(1, "a", claims)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 claims left, got %d", len(got))
	}
	// First match in document order goes; the later duplicate stays.
	if got[0].PlayerID != "b" || got[1].PlayerID != "a" {
		t.Fatalf("wrong record removed: %+v", got)
	}
	if len(claims) != 3 {
		t.Fatalf("input mutated: %+v", claims)
	}
}

func TestRemoveOne_NotFoundIsNoOp(t *testing.T) {
	claims := []game.Claim{{PlayerID: "a", ShareID: 1}}
	got, err := RemoveOne(2, "a", claims)
	if !errors.Is(err, ErrClaimNotFound) {
		t.Fatalf("want ErrClaimNotFound, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("claims changed on not-found: %+v", got)
	}
}

func TestRemoveOne_OtherPlayersUntouched(t *testing.T) {
	shares := testShares()
	claims := []game.Claim{
		{PlayerID: "a", ShareID: 1},
		{PlayerID: "b", ShareID: 1},
		{PlayerID: "b", ShareID: 3},
	}

	got, err := RemoveOne(1, "a", claims)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	before := ClaimsForPlayer("b", claims, shares)
	after := ClaimsForPlayer("b", got, shares)
	if len(before) != len(after) {
		t.Fatalf("player b claims changed: before=%d after=%d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("player b claim %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestStats(t *testing.T) {
	shares := testShares()
	players := []game.Player{
		{ID: "a", Name: "Ada", IsHost: true},
		{ID: "b", Name: "Bob"},
	}
	claims := []game.Claim{
		{PlayerID: "a", ShareID: 1},
		{PlayerID: "a", ShareID: 1},
		{PlayerID: "a", ShareID: 3},
	}

	stats := Stats(players, claims, shares)
	if len(stats) != 2 {
		t.Fatalf("want 2 rows, got %d", len(stats))
	}

	ada := stats[0]
	if ada.Total != 3 || len(ada.Holdings) != 2 {
		t.Fatalf("ada: total=%d holdings=%d", ada.Total, len(ada.Holdings))
	}
	if ada.Holdings[0].Share.ID != 1 || ada.Holdings[0].Count != 2 {
		t.Fatalf("ada holdings wrong: %+v", ada.Holdings)
	}

	bob := stats[1]
	if bob.Total != 0 || len(bob.Holdings) != 0 {
		t.Fatalf("bob should be empty: %+v", bob)
	}
}
