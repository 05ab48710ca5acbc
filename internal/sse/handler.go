// Package sse is the alternate presentation variant: a read-only
// server-sent-events stream of document snapshots. Spectators watch the
// board without taking a seat.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/railgames/shareboard/internal/store"
)

// Handler streams the document at the requested code as "snapshot" events
// until the client disconnects. The current state is sent first; an absent
// document streams as an empty data payload. codeFrom extracts the game
// code from the request, keeping this package free of router specifics.
func Handler(st store.Store, log *zap.Logger, codeFrom func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := codeFrom(r)
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		sub, err := st.Subscribe(r.Context(), code)
		if err != nil {
			http.Error(w, "subscribe failed", http.StatusInternalServerError)
			return
		}
		defer sub.Cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		for {
			select {
			case <-r.Context().Done():
				return
			case doc, open := <-sub.Updates():
				if !open {
					// Dropped for falling behind; the client reconnects.
					return
				}
				payload := []byte{}
				if doc != nil {
					payload, err = json.Marshal(doc)
					if err != nil {
						log.Warn("encode snapshot", zap.String("code", code), zap.Error(err))
						continue
					}
				}
				fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
