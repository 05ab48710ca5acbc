// Package types holds the wire messages for the live game channel.
package types

import "github.com/railgames/shareboard/internal/game"

// Client -> Server
type ClientMessage struct {
	Type     string `json:"type"` // "AddShare" | "RemoveShare" | "Leave"
	ShareID  int    `json:"share_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"` // assign target / claim owner
}

// Server -> Client
type ServerMessage struct {
	Type     string         `json:"type"` // "Joined" | "Snapshot" | "Error"
	PlayerID string         `json:"player_id,omitempty"`
	Game     *game.Document `json:"game,omitempty"`
	Error    string         `json:"error,omitempty"`
}
