// Package identity resolves the local player's opaque id and display name.
//
// Identity is deliberately an injected dependency of the session manager
// rather than ambient global state: the terminal client persists it on disk
// so it survives restarts, while the server wraps whatever the connecting
// client presented.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Provider resolves the local player. PlayerID mints an id on first use and
// persists it; SetName persists on change.
type Provider interface {
	PlayerID() (string, error)
	Name() (string, error)
	SetName(name string) error
}

// Static is a fixed identity, used server-side for the identity a client
// presented in its handshake.
type Static struct {
	ID          string
	DisplayName string
}

func (s Static) PlayerID() (string, error) { return s.ID, nil }
func (s Static) Name() (string, error)     { return s.DisplayName, nil }
func (s Static) SetName(name string) error {
	return fmt.Errorf("static identity is read-only")
}

// File persists the identity as JSON under a directory, surviving reloads.
type File struct {
	path string

	mu     sync.Mutex
	loaded bool
	state  fileState
}

type fileState struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// NewFile stores identity at dir/identity.json.
func NewFile(dir string) *File {
	return &File{path: filepath.Join(dir, "identity.json")}
}

// PlayerID returns the persisted id, minting and persisting a fresh opaque
// token on first use.
func (f *File) PlayerID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return "", err
	}
	if f.state.PlayerID == "" {
		f.state.PlayerID = MintID()
		if err := f.save(); err != nil {
			return "", err
		}
	}
	return f.state.PlayerID, nil
}

func (f *File) Name() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return "", err
	}
	return f.state.Name, nil
}

func (f *File) SetName(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(); err != nil {
		return err
	}
	f.state.Name = name
	return f.save()
}

func (f *File) load() error {
	if f.loaded {
		return nil
	}
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read identity: %w", err)
	}
	if err := json.Unmarshal(raw, &f.state); err != nil {
		return fmt.Errorf("decode identity: %w", err)
	}
	f.loaded = true
	return nil
}

func (f *File) save() error {
	raw, err := json.Marshal(f.state)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// MintID makes a new opaque player token.
func MintID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return "player_" + suffix
}
