package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/railgames/shareboard/internal/counter"
	"github.com/railgames/shareboard/internal/session"
	"github.com/railgames/shareboard/internal/sse"
	"github.com/railgames/shareboard/internal/store"
	"github.com/railgames/shareboard/internal/ws"
)

// SetupRoutes builds the router with the store and counter grid injected.
func SetupRoutes(st store.Store, grid *counter.Grid, log *zap.Logger, opts ...session.Option) http.Handler {
	r := chi.NewRouter()

	r.Post("/games", CreateGame(st, log, opts...))
	r.Get("/games/{code}", ReadGame(st))
	r.Get("/games/{code}/events", sse.Handler(st, log, func(req *http.Request) string {
		return chi.URLParam(req, "code")
	}))
	r.Get("/ws", ws.Handler(st, log, opts...))

	r.Get("/counter", CounterState(grid))
	r.Post("/counter/{id}/increment", CounterIncrement(grid))
	r.Post("/counter/{id}/decrement", CounterDecrement(grid))
	r.Post("/counter/reset", CounterReset(grid))

	r.Get("/healthz", Healthz)
	return r
}
