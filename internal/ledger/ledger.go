// Package ledger computes availability and per-player claim views from raw
// claim records and decides whether a new claim is admissible.
//
// Every function is pure: it reads the caller's snapshot of shares and
// claims and never mutates its inputs. The admission check therefore only
// ever sees a locally cached snapshot, not a transactionally fresh read —
// two clients can both pass CanClaim for the last remaining unit and both
// write. That race is the documented contract of the system, not a bug in
// this package.
package ledger

import (
	"errors"

	"github.com/railgames/shareboard/internal/game"
)

var ErrClaimNotFound = errors.New("claim not found")

// ShareCount is the derived availability of one share type.
type ShareCount struct {
	Share     game.ShareType `json:"share"`
	Claimed   int            `json:"claimed"`
	Remaining int            `json:"remaining"`
}

// PlayerClaim is one claim joined against the catalog. An unknown share id
// yields empty label and color rather than an error.
type PlayerClaim struct {
	ShareID int    `json:"shareId"`
	Label   string `json:"label"`
	Color   string `json:"color"`
}

// Holding is a player's count of one share type, used by the stats view.
type Holding struct {
	Share game.ShareType `json:"share"`
	Count int            `json:"count"`
}

// PlayerStat is the per-player statistics row: holdings with at least one
// claim, plus the player's total claim count.
type PlayerStat struct {
	Player   game.Player `json:"player"`
	Holdings []Holding   `json:"holdings"`
	Total    int         `json:"total"`
}

// Availability reports claimed and remaining counts for every share type,
// in catalog order. Total over all inputs; never fails.
func Availability(shares []game.ShareType, claims []game.Claim) []ShareCount {
	counts := make([]ShareCount, 0, len(shares))
	for _, s := range shares {
		claimed := countClaims(claims, s.ID)
		counts = append(counts, ShareCount{
			Share:     s,
			Claimed:   claimed,
			Remaining: s.Max - claimed,
		})
	}
	return counts
}

// CanClaim reports whether one more unit of the share type may be claimed:
// the share must exist in the catalog and its claimed count must be below
// max. This is the sole admission check before a claim is written.
func CanClaim(shareID int, shares []game.ShareType, claims []game.Claim) bool {
	for _, s := range shares {
		if s.ID == shareID {
			return countClaims(claims, shareID) < s.Max
		}
	}
	return false
}

// ClaimsForPlayer joins a player's claims against the catalog, preserving
// claim insertion order.
func ClaimsForPlayer(playerID string, claims []game.Claim, shares []game.ShareType) []PlayerClaim {
	var out []PlayerClaim
	for _, c := range claims {
		if c.PlayerID != playerID {
			continue
		}
		pc := PlayerClaim{ShareID: c.ShareID}
		for _, s := range shares {
			if s.ID == c.ShareID {
				pc.Label = s.Label
				pc.Color = s.Color
				break
			}
		}
		out = append(out, pc)
	}
	return out
}

// RemoveOne returns a copy of claims with the first record matching
// (shareID, playerID) removed, scanning in document order. Absence is an
// expected race outcome (another client may have removed it already), so it
// is reported as ErrClaimNotFound with the input returned unchanged.
func RemoveOne(shareID int, playerID string, claims []game.Claim) ([]game.Claim, error) {
	for i, c := range claims {
		if c.ShareID == shareID && c.PlayerID == playerID {
			out := make([]game.Claim, 0, len(claims)-1)
			out = append(out, claims[:i]...)
			out = append(out, claims[i+1:]...)
			return out, nil
		}
	}
	return claims, ErrClaimNotFound
}

// Stats builds the per-player statistics view: each player's holdings
// (share types they hold at least one of, in catalog order) and total.
func Stats(players []game.Player, claims []game.Claim, shares []game.ShareType) []PlayerStat {
	stats := make([]PlayerStat, 0, len(players))
	for _, p := range players {
		stat := PlayerStat{Player: p}
		for _, s := range shares {
			n := 0
			for _, c := range claims {
				if c.PlayerID == p.ID && c.ShareID == s.ID {
					n++
				}
			}
			if n > 0 {
				stat.Holdings = append(stat.Holdings, Holding{Share: s, Count: n})
			}
		}
		for _, c := range claims {
			if c.PlayerID == p.ID {
				stat.Total++
			}
		}
		stats = append(stats, stat)
	}
	return stats
}

func countClaims(claims []game.Claim, shareID int) int {
	n := 0
	for _, c := range claims {
		if c.ShareID == shareID {
			n++
		}
	}
	return n
}
