// Package store defines the game state store: one JSON document per game
// code, with read-once, subscribe-for-changes, merge-update, and full
// replacement primitives. Implementations fan every change out to all
// subscribers of that code.
package store

import (
	"context"
	"errors"

	"github.com/railgames/shareboard/internal/game"
)

var ErrNotFound = errors.New("document not found")

// Fields is a merge-update: only non-nil fields are overwritten, each as a
// whole-field replacement. A single Write applies its fields atomically;
// there is no cross-call coordination, so concurrent writers to the same
// field are last-write-wins.
type Fields struct {
	Players *[]game.Player
	Claims  *[]game.Claim
	Active  *bool
}

// Subscription is a live feed of document snapshots for one game code. The
// current snapshot (nil when the document is absent) is delivered first,
// then every subsequent change. Cancel is idempotent and safe to call after
// teardown; the channel closes when the subscription ends, including when
// the subscriber is dropped for falling behind.
type Subscription interface {
	Updates() <-chan *game.Document
	Cancel()
}

// Store is the external collaborator holding game documents.
type Store interface {
	Read(ctx context.Context, code string) (*game.Document, error)
	Subscribe(ctx context.Context, code string) (Subscription, error)
	Write(ctx context.Context, code string, fields Fields) error
	WriteFull(ctx context.Context, code string, doc *game.Document) error
}

func applyFields(doc *game.Document, fields Fields) {
	if fields.Players != nil {
		doc.Players = append([]game.Player(nil), (*fields.Players)...)
	}
	if fields.Claims != nil {
		doc.Claims = append([]game.Claim(nil), (*fields.Claims)...)
	}
	if fields.Active != nil {
		doc.Active = *fields.Active
	}
}
