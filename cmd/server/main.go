package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/railgames/shareboard/internal/config"
	"github.com/railgames/shareboard/internal/counter"
	"github.com/railgames/shareboard/internal/httpapi"
	"github.com/railgames/shareboard/internal/session"
	"github.com/railgames/shareboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var st store.Store
	if cfg.DatabaseURL != "" {
		db, err := store.OpenDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		st = db
		log.Info("using postgres document store")
	} else {
		st = store.NewMemory()
		log.Info("using in-memory document store")
	}

	grid := counter.NewGrid(counter.DefaultDeck())
	handler := httpapi.SetupRoutes(st, grid, log,
		session.WithDefaultCode(cfg.DefaultGameCode))

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
