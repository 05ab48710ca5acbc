package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "3733", cfg.DefaultGameCode)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.DatabaseURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("DEFAULT_GAME_CODE", "1830")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "1830", cfg.DefaultGameCode)
	require.Equal(t, "debug", cfg.LogLevel)
}
