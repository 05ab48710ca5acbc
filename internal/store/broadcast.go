package store

import (
	"sync"

	"github.com/railgames/shareboard/internal/game"
)

// subBuffer is how many snapshots a subscriber may lag before it is dropped.
const subBuffer = 16

// broadcaster is the per-code subscriber registry shared by the store
// implementations. Publishing never blocks: a subscriber whose channel is
// full is dropped and its channel closed, the same policy the ws layer
// applies to slow clients.
type broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[int]*subscription
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[string]map[int]*subscription)}
}

type subscription struct {
	ch     chan *game.Document
	cancel func()
	once   sync.Once
}

func (s *subscription) Updates() <-chan *game.Document { return s.ch }

func (s *subscription) Cancel() {
	s.once.Do(s.cancel)
}

// subscribe registers a new subscriber for code and delivers the initial
// snapshot before returning, so the caller always sees current state first.
func (b *broadcaster) subscribe(code string, initial *game.Document) *subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	sub := &subscription{ch: make(chan *game.Document, subBuffer)}
	sub.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[code]; ok {
			if _, live := set[id]; live {
				delete(set, id)
				close(sub.ch)
			}
			if len(set) == 0 {
				delete(b.subs, code)
			}
		}
	}

	if b.subs[code] == nil {
		b.subs[code] = make(map[int]*subscription)
	}
	b.subs[code][id] = sub

	sub.ch <- initial
	return sub
}

// publish fans a snapshot out to every subscriber of code, dropping any
// that cannot keep up.
func (b *broadcaster) publish(code string, doc *game.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs[code] {
		select {
		case sub.ch <- doc.Clone():
		default:
			// Subscriber is slow/full - drop it.
			delete(b.subs[code], id)
			close(sub.ch)
		}
	}
	if len(b.subs[code]) == 0 {
		delete(b.subs, code)
	}
}
