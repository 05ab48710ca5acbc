package store

import (
	"context"
	"sync"

	"github.com/railgames/shareboard/internal/game"
)

// Memory is the process-local store backend, the default when no database
// is configured. Documents live in a code-keyed map and every write is
// fanned out to that code's subscribers.
type Memory struct {
	mu   sync.Mutex
	docs map[string]*game.Document
	bc   *broadcaster
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]*game.Document),
		bc:   newBroadcaster(),
	}
}

func (m *Memory) Read(_ context.Context, code string) (*game.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[code]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *Memory) Subscribe(_ context.Context, code string) (Subscription, error) {
	m.mu.Lock()
	initial := m.docs[code].Clone()
	m.mu.Unlock()

	return m.bc.subscribe(code, initial), nil
}

func (m *Memory) Write(_ context.Context, code string, fields Fields) error {
	m.mu.Lock()
	doc, ok := m.docs[code]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	applyFields(doc, fields)
	snap := doc.Clone()
	m.mu.Unlock()

	m.bc.publish(code, snap)
	return nil
}

func (m *Memory) WriteFull(_ context.Context, code string, doc *game.Document) error {
	snap := doc.Clone()

	m.mu.Lock()
	m.docs[code] = snap
	m.mu.Unlock()

	m.bc.publish(code, snap)
	return nil
}
