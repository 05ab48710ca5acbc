// Package catalog holds the static share catalog games are created with.
package catalog

import "github.com/railgames/shareboard/internal/game"

// Default is the stock railroad share set. It is copied into every new game
// document at creation time; edits here never reach games already running.
var Default = []game.ShareType{
	{ID: 1, Label: "New York Central System", Max: 12, Color: "red"},
	{ID: 2, Label: "Jersey Central Line", Max: 15, Color: "blue"},
	{ID: 3, Label: "Lackawanna Erie Railway", Max: 10, Color: "green"},
	{ID: 4, Label: "Western Maryland Railway", Max: 8, Color: "yellow"},
	{ID: 5, Label: "Lehigh Valley Railroad", Max: 5, Color: "purple"},
	{ID: 6, Label: "Reading Railroad", Max: 7, Color: "orange"},
	{ID: 7, Label: "BR & P", Max: 10, Color: "gray"},
}

// Shares returns a fresh copy of the default catalog so callers can freeze
// it into a document without sharing the backing array.
func Shares() []game.ShareType {
	return append([]game.ShareType(nil), Default...)
}
