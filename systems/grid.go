// Package systems implements the board rules: grid bounds, the snake body,
// the food pool with its question, and scoring.
package systems

import "github.com/pthm-cable/quizsnake/components"

// Grid is the fixed-size board.
type Grid struct {
	Width  int
	Height int
}

// NewGrid returns a grid of the given size.
func NewGrid(width, height int) Grid {
	return Grid{Width: width, Height: height}
}

// InBounds reports whether c lies on the board.
func (g Grid) InBounds(c components.Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Cells returns the number of cells on the board.
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Start returns the snake's spawn point: a quarter in from the left edge,
// halfway down.
func (g Grid) Start() components.Coord {
	return components.Coord{X: g.Width / 4, Y: g.Height / 2}
}
