// Package counter is the standalone card-counter widget: a grid of bounded
// counters, one per card type, with no connection to the game store.
package counter

import "sync"

// Card is one countable card type.
type Card struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
	Max   int    `json:"max"`
}

// Count is a card with its current counter value.
type Count struct {
	Card
	Current int `json:"current"`
}

// DefaultDeck is the stock card set.
func DefaultDeck() []Card {
	return []Card{
		{ID: 1, Label: "Red", Max: 12, Color: "red"},
		{ID: 2, Label: "Blue", Max: 15, Color: "blue"},
		{ID: 3, Label: "Green", Max: 10, Color: "green"},
		{ID: 4, Label: "Yellow", Max: 8, Color: "yellow"},
		{ID: 5, Label: "Purple", Max: 5, Color: "purple"},
		{ID: 6, Label: "Orange", Max: 7, Color: "orange"},
		{ID: 7, Label: "Black", Max: 10, Color: "black"},
		{ID: 8, Label: "White", Max: 6, Color: "white"},
		{ID: 9, Label: "Wild", Max: 2, Color: "pink"},
	}
}

// Grid holds the live counters. Every counter starts at its max.
type Grid struct {
	mu     sync.Mutex
	counts []Count
}

func NewGrid(cards []Card) *Grid {
	g := &Grid{counts: make([]Count, 0, len(cards))}
	for _, c := range cards {
		g.counts = append(g.counts, Count{Card: c, Current: c.Max})
	}
	return g
}

// Increment bumps the counter unless it is already at max or the id is
// unknown; it reports whether anything changed.
func (g *Grid) Increment(id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.counts {
		if g.counts[i].ID == id && g.counts[i].Current < g.counts[i].Max {
			g.counts[i].Current++
			return true
		}
	}
	return false
}

// Decrement lowers the counter unless it is already at zero or the id is
// unknown; it reports whether anything changed.
func (g *Grid) Decrement(id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.counts {
		if g.counts[i].ID == id && g.counts[i].Current > 0 {
			g.counts[i].Current--
			return true
		}
	}
	return false
}

// Reset restores every counter to its max.
func (g *Grid) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.counts {
		g.counts[i].Current = g.counts[i].Max
	}
}

// Counts returns a snapshot of the grid.
func (g *Grid) Counts() []Count {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Count(nil), g.counts...)
}
