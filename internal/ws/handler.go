// Package ws is the live presentation channel: one websocket connection is
// one seated session. The server streams document snapshots down and
// accepts claim intents up.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/railgames/shareboard/internal/identity"
	"github.com/railgames/shareboard/internal/session"
	"github.com/railgames/shareboard/internal/store"
	"github.com/railgames/shareboard/pkg/types"
)

const writeTimeout = 3 * time.Second

// Handler joins the requested game as the presented identity and runs the
// snapshot/intent loop until the client disconnects or leaves.
func Handler(st store.Store, log *zap.Logger, opts ...session.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		name := r.URL.Query().Get("name")
		playerID := r.URL.Query().Get("player")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		if playerID == "" {
			// First contact: mint an id the client keeps for reconnects.
			playerID = identity.MintID()
		}

		mgrOpts := append([]session.Option{session.WithLogger(log)}, opts...)
		mgr := session.NewManager(st, identity.Static{ID: playerID, DisplayName: name}, mgrOpts...)

		if err := mgr.JoinGame(r.Context(), code); err != nil {
			http.Error(w, err.Error(), joinStatus(err))
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			mgr.Close()
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		// Teardown without leaving: a dropped connection keeps the player
		// seated, same as a page reload.
		defer mgr.Close()

		send(r.Context(), conn, types.ServerMessage{Type: "Joined", PlayerID: playerID, Game: mgr.Snapshot()})

		// Writer goroutine: forward every snapshot push.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for doc := range mgr.Updates() {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				send(ctx, conn, types.ServerMessage{Type: "Snapshot", Game: doc})
				cancel()
			}
		}()

		// Reader loop: decode intents and apply them through the session.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				send(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			switch cm.Type {
			case "AddShare":
				if err := mgr.AddShare(r.Context(), cm.ShareID, cm.PlayerID); err != nil {
					send(r.Context(), conn, types.ServerMessage{Type: "Error", Error: err.Error()})
				}
			case "RemoveShare":
				owner := cm.PlayerID
				if owner == "" {
					owner = playerID
				}
				if err := mgr.RemoveShare(r.Context(), cm.ShareID, owner); err != nil {
					send(r.Context(), conn, types.ServerMessage{Type: "Error", Error: err.Error()})
				}
			case "Leave":
				if err := mgr.LeaveGame(r.Context()); err != nil {
					log.Warn("leave failed", zap.String("code", code), zap.Error(err))
				}
				return
			default:
				send(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "unknown type"})
			}
		}
	}
}

func send(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func joinStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrGameInactive):
		return http.StatusGone
	case errors.Is(err, session.ErrNameRequired), errors.Is(err, session.ErrCodeRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
