package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/railgames/shareboard/internal/counter"
	"github.com/railgames/shareboard/internal/identity"
	"github.com/railgames/shareboard/internal/session"
	"github.com/railgames/shareboard/internal/store"
)

type createGameRequest struct {
	Name     string `json:"name"`
	PlayerID string `json:"player_id,omitempty"`
}

type createGameResponse struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

// CreateGame seats the caller as host of a fresh game at the default code.
// The bootstrap subscription is torn down immediately; the creator stays
// seated and reconnects over the live channel.
func CreateGame(st store.Store, log *zap.Logger, opts ...session.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.PlayerID == "" {
			req.PlayerID = identity.MintID()
		}

		mgrOpts := append([]session.Option{session.WithLogger(log)}, opts...)
		mgr := session.NewManager(st, identity.Static{ID: req.PlayerID, DisplayName: req.Name}, mgrOpts...)

		code, err := mgr.CreateGame(r.Context())
		if err != nil {
			http.Error(w, err.Error(), createStatus(err))
			return
		}
		mgr.Close()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createGameResponse{Code: code, PlayerID: req.PlayerID})
	}
}

// ReadGame is the read-once document fetch.
func ReadGame(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		doc, err := st.Read(r.Context(), code)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "read failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}
}

// Counter endpoints operate the process-local card-counter grid. The
// widget has no connection to game documents.

func CounterState(grid *counter.Grid) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(grid.Counts())
	}
}

func CounterIncrement(grid *counter.Grid) http.HandlerFunc {
	return counterStep(grid, (*counter.Grid).Increment)
}

func CounterDecrement(grid *counter.Grid) http.HandlerFunc {
	return counterStep(grid, (*counter.Grid).Decrement)
}

func counterStep(grid *counter.Grid, step func(*counter.Grid, int) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad counter id", http.StatusBadRequest)
			return
		}
		step(grid, id) // at-bound and unknown-id are silent no-ops
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(grid.Counts())
	}
}

func CounterReset(grid *counter.Grid) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid.Reset()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(grid.Counts())
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func createStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrGameExists):
		return http.StatusConflict
	case errors.Is(err, session.ErrNameRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
