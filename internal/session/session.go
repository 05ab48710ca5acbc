// Package session owns the local player's game lifecycle: identity, the
// live document subscription, and every mutating intent (create, join,
// leave, claim, unclaim).
//
// A manager is single-client and event-driven: intents act on the last
// snapshot the subscription delivered, write whole fields back to the
// store, and then wait for the subscription push to reflect the change.
// There is no optimistic local mutation and no retry; a failed write leaves
// the manager exactly where it was.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/railgames/shareboard/internal/catalog"
	"github.com/railgames/shareboard/internal/game"
	"github.com/railgames/shareboard/internal/identity"
	"github.com/railgames/shareboard/internal/ledger"
	"github.com/railgames/shareboard/internal/store"
)

// DefaultCode is the shared game code every created game defaults to.
// There is one fixed code, so create-after-create without deactivation
// collides with ErrGameExists; that collision is intended behavior.
const DefaultCode = "3733"

var (
	ErrNameRequired   = errors.New("enter your name first")
	ErrCodeRequired   = errors.New("enter a game code")
	ErrGameExists     = errors.New("an active game already exists at this code")
	ErrGameNotFound   = errors.New("game not found")
	ErrGameInactive   = errors.New("this game has ended")
	ErrShareUnknown   = errors.New("share not found")
	ErrShareExhausted = errors.New("all shares of this type have been claimed")
	ErrInGame         = errors.New("already in a game")
	ErrNotInGame      = errors.New("not in a game")
)

// State is the manager's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateJoining
	StateInGame
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateJoining:
		return "joining"
	case StateInGame:
		return "in-game"
	default:
		return "unknown"
	}
}

// updateBuffer is how many snapshots the presentation side may lag before
// older ones are skipped.
const updateBuffer = 16

// Manager drives one client's session against the shared store.
type Manager struct {
	store       store.Store
	ident       identity.Provider
	clock       clockwork.Clock
	log         *zap.Logger
	shares      []game.ShareType
	defaultCode string

	mu      sync.Mutex
	state   State
	code    string
	doc     *game.Document
	sub     store.Subscription
	updates chan *game.Document
}

type Option func(*Manager)

func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithCatalog overrides the share catalog frozen into created games.
func WithCatalog(shares []game.ShareType) Option {
	return func(m *Manager) { m.shares = append([]game.ShareType(nil), shares...) }
}

// WithDefaultCode overrides the code created games are placed at.
func WithDefaultCode(code string) Option {
	return func(m *Manager) { m.defaultCode = code }
}

func NewManager(st store.Store, ident identity.Provider, opts ...Option) *Manager {
	m := &Manager{
		store:       st,
		ident:       ident,
		clock:       clockwork.NewRealClock(),
		log:         zap.NewNop(),
		shares:      catalog.Shares(),
		defaultCode: DefaultCode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PlayerID resolves the local player's id, minting one on first use when
// the provider is persistent.
func (m *Manager) PlayerID() (string, error) {
	return m.ident.PlayerID()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns the last document the subscription delivered, nil when
// not in a game (or when the document went absent).
func (m *Manager) Snapshot() *game.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

// Updates is the presentation-facing snapshot stream for the current game.
// The channel closes when the session ends.
func (m *Manager) Updates() <-chan *game.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

// CreateGame creates a fresh game at the default code with the caller as
// sole host and the frozen default catalog, then subscribes. Fails with
// ErrGameExists when an active game already sits at that code.
func (m *Manager) CreateGame(ctx context.Context) (string, error) {
	id, name, err := m.identity()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return "", ErrInGame
	}
	m.state = StateJoining

	code := m.defaultCode
	existing, err := m.store.Read(ctx, code)
	switch {
	case err == nil:
		if existing.Active {
			m.state = StateIdle
			return "", ErrGameExists
		}
	case errors.Is(err, store.ErrNotFound):
		// fresh code
	default:
		m.state = StateIdle
		return "", fmt.Errorf("read game: %w", err)
	}

	doc := &game.Document{
		GameID:    code,
		Players:   []game.Player{{ID: id, Name: name, IsHost: true}},
		Shares:    append([]game.ShareType(nil), m.shares...),
		Claims:    []game.Claim{},
		Active:    true,
		CreatedAt: m.clock.Now().UnixMilli(),
	}
	if err := m.store.WriteFull(ctx, code, doc); err != nil {
		m.state = StateIdle
		return "", fmt.Errorf("create game: %w", err)
	}

	if err := m.subscribeLocked(ctx, code, doc); err != nil {
		m.state = StateIdle
		return "", err
	}
	m.log.Info("game created", zap.String("code", code), zap.String("player", id))
	return code, nil
}

// JoinGame validates the game at code and subscribes to it, seating the
// caller as a non-host player unless already seated.
func (m *Manager) JoinGame(ctx context.Context, code string) error {
	id, name, err := m.identity()
	if err != nil {
		return err
	}
	if code == "" {
		return ErrCodeRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return ErrInGame
	}
	m.state = StateJoining

	doc, err := m.store.Read(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		m.state = StateIdle
		return ErrGameNotFound
	}
	if err != nil {
		m.state = StateIdle
		return fmt.Errorf("read game: %w", err)
	}
	if !doc.Active {
		m.state = StateIdle
		return ErrGameInactive
	}

	if _, seated := doc.PlayerByID(id); !seated {
		players := append(append([]game.Player(nil), doc.Players...), game.Player{ID: id, Name: name})
		if err := m.store.Write(ctx, code, store.Fields{Players: &players}); err != nil {
			m.state = StateIdle
			return fmt.Errorf("join game: %w", err)
		}
		doc.Players = players
	}

	if err := m.subscribeLocked(ctx, code, doc); err != nil {
		m.state = StateIdle
		return err
	}
	m.log.Info("game joined", zap.String("code", code), zap.String("player", id))
	return nil
}

// LeaveGame removes the caller from the player list and prunes the
// caller's own claims; when the caller is the last player it instead marks
// the room dead with active=false, leaving players and claims untouched.
// Local state is cleared unconditionally, even when the write fails, and
// calling LeaveGame with no active session is a safe no-op.
func (m *Manager) LeaveGame(ctx context.Context) error {
	id, err := m.ident.PlayerID()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateInGame || m.doc == nil {
		return nil
	}

	code := m.code
	players := make([]game.Player, 0, len(m.doc.Players))
	for _, p := range m.doc.Players {
		if p.ID != id {
			players = append(players, p)
		}
	}
	claims := make([]game.Claim, 0, len(m.doc.Claims))
	for _, c := range m.doc.Claims {
		if c.PlayerID != id {
			claims = append(claims, c)
		}
	}

	var fields store.Fields
	if len(players) == 0 {
		inactive := false
		fields = store.Fields{Active: &inactive}
	} else {
		fields = store.Fields{Players: &players, Claims: &claims}
	}

	writeErr := m.store.Write(ctx, code, fields)
	m.teardownLocked()

	if writeErr != nil {
		return fmt.Errorf("leave game: %w", writeErr)
	}
	m.log.Info("game left", zap.String("code", code), zap.String("player", id))
	return nil
}

// AddShare claims one unit of the share type for the caller, or for the
// designated seated player when onBehalfOf is non-empty (the assign flow).
// Admission is checked against the last received snapshot only.
func (m *Manager) AddShare(ctx context.Context, shareID int, onBehalfOf string) error {
	id, err := m.ident.PlayerID()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateInGame || m.doc == nil {
		return ErrNotInGame
	}

	share, ok := m.doc.ShareByID(shareID)
	if !ok {
		return ErrShareUnknown
	}
	if !ledger.CanClaim(shareID, m.doc.Shares, m.doc.Claims) {
		return fmt.Errorf("%s: %w", share.Label, ErrShareExhausted)
	}

	target := onBehalfOf
	if target == "" {
		target = id
	}

	claims := append(append([]game.Claim(nil), m.doc.Claims...), game.Claim{PlayerID: target, ShareID: shareID})
	if err := m.store.Write(ctx, m.code, store.Fields{Claims: &claims}); err != nil {
		return fmt.Errorf("add share: %w", err)
	}
	m.log.Debug("share claimed",
		zap.String("code", m.code), zap.Int("share", shareID), zap.String("player", target))
	return nil
}

// RemoveShare drops one matching claim record from the last snapshot.
// Absence surfaces as the ledger's not-found error: another client may
// have removed it first, which is an expected outcome.
func (m *Manager) RemoveShare(ctx context.Context, shareID int, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateInGame || m.doc == nil {
		return ErrNotInGame
	}

	claims, err := ledger.RemoveOne(shareID, playerID, m.doc.Claims)
	if err != nil {
		return err
	}
	if err := m.store.Write(ctx, m.code, store.Fields{Claims: &claims}); err != nil {
		return fmt.Errorf("remove share: %w", err)
	}
	m.log.Debug("share returned",
		zap.String("code", m.code), zap.Int("share", shareID), zap.String("player", playerID))
	return nil
}

// Close tears the subscription down without leaving the game, the
// component-unmount path: the player stays seated and can resubscribe by
// joining again. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
}

func (m *Manager) identity() (id, name string, err error) {
	id, err = m.ident.PlayerID()
	if err != nil {
		return "", "", fmt.Errorf("resolve identity: %w", err)
	}
	name, err = m.ident.Name()
	if err != nil {
		return "", "", fmt.Errorf("resolve identity: %w", err)
	}
	if name == "" {
		return "", "", ErrNameRequired
	}
	return id, name, nil
}

// subscribeLocked attaches a live subscription and starts the pump that
// keeps the cached snapshot current. Caller holds m.mu.
func (m *Manager) subscribeLocked(ctx context.Context, code string, doc *game.Document) error {
	sub, err := m.store.Subscribe(ctx, code)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	m.sub = sub
	m.code = code
	m.doc = doc
	m.state = StateInGame
	m.updates = make(chan *game.Document, updateBuffer)

	go m.pump(sub, m.updates)
	return nil
}

// pump feeds subscription pushes into the cached snapshot and on to the
// presentation channel. Presentation consumers that lag simply miss
// intermediate snapshots; the latest state always lands in m.doc.
func (m *Manager) pump(sub store.Subscription, out chan<- *game.Document) {
	defer close(out)
	for doc := range sub.Updates() {
		m.mu.Lock()
		if m.sub != sub {
			m.mu.Unlock()
			return
		}
		m.doc = doc
		m.mu.Unlock()

		select {
		case out <- doc:
		default:
		}
	}
}

func (m *Manager) teardownLocked() {
	if m.sub != nil {
		m.sub.Cancel()
		m.sub = nil
	}
	m.doc = nil
	m.code = ""
	m.state = StateIdle
	m.updates = nil
}
