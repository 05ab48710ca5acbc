// Package game defines the shared game document: the single JSON blob the
// store holds per game code and fans out to every subscriber.
package game

// ShareType is a claimable token category with a finite supply. The catalog
// is frozen into the document at creation, so catalog edits never affect
// games already in progress.
type ShareType struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
	Max   int    `json:"max"`
}

// Player is a seated participant. Exactly one player is the host (the
// creator); the flag is never reassigned when players leave.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Claim associates one player with one unit of a share type. Claims are not
// unique-keyed; the same (player, share) pair may appear more than once.
type Claim struct {
	PlayerID string `json:"playerId"`
	ShareID  int    `json:"shareId"`
}

// Document is the whole state of one game room. Mutations are whole-field
// overwrites of Players or Claims; the room is logically destroyed by
// Active=false, never deleted.
type Document struct {
	GameID    string      `json:"gameId"`
	Players   []Player    `json:"players"`
	Shares    []ShareType `json:"shares"`
	Claims    []Claim     `json:"claims"`
	Active    bool        `json:"active"`
	CreatedAt int64       `json:"createdAt"` // unix milliseconds
}

// Clone deep-copies the document so snapshots handed to subscribers never
// alias the store's copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Players = append([]Player(nil), d.Players...)
	c.Shares = append([]ShareType(nil), d.Shares...)
	c.Claims = append([]Claim(nil), d.Claims...)
	return &c
}

// PlayerByID returns the seated player with the given id, if any.
func (d *Document) PlayerByID(id string) (Player, bool) {
	for _, p := range d.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// ShareByID returns the share type with the given id, if any.
func (d *Document) ShareByID(id int) (ShareType, bool) {
	for _, s := range d.Shares {
		if s.ID == id {
			return s, true
		}
	}
	return ShareType{}, false
}
