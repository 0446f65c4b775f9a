// Package autopilot steers a session without a human at the keyboard. It
// heads for an item answering the current question and otherwise keeps the
// snake alive as long as it can.
package autopilot

import (
	"math"

	"github.com/pthm-cable/quizsnake/components"
	"github.com/pthm-cable/quizsnake/game"
	"github.com/pthm-cable/quizsnake/systems"
)

// Params tunes the pilot's choices.
type Params struct {
	// Cost of entering a cell holding a non-target item. Plain cells cost 1,
	// so routes detour around wrong answers when the detour is shorter.
	WrongFoodCost float64 `yaml:"wrong_food_cost"`
	// Free cells required after the first move of a route, per body segment.
	SpaceMargin float64 `yaml:"space_margin"`
}

// DefaultParams returns the hand-picked defaults.
func DefaultParams() Params {
	return Params{WrongFoodCost: 5, SpaceMargin: 1}
}

// Pilot chooses a direction for each movement step.
type Pilot struct {
	planner       *Planner
	wrongFoodCost int
	spaceMargin   float64
}

// New creates a pilot with DefaultParams.
func New() *Pilot {
	return NewWithParams(DefaultParams())
}

// NewWithParams creates a pilot with the given params.
func NewWithParams(p Params) *Pilot {
	cost := int(math.Round(p.WrongFoodCost))
	if cost < 1 {
		cost = 1
	}
	margin := p.SpaceMargin
	if margin < 0 {
		margin = 0
	}
	return &Pilot{planner: NewPlanner(), wrongFoodCost: cost, spaceMargin: margin}
}

// Steer decides the next move for s and presses it.
func (p *Pilot) Steer(s *game.Session) components.Direction {
	d, _ := p.Decide(s.Snapshot(), s.Grid())
	s.PressDirection(d)
	return d
}

// Decide picks a direction from snap. The second result is false when no
// move avoids a collision, in which case the current direction is returned.
func (p *Pilot) Decide(snap game.Snapshot, grid systems.Grid) (components.Direction, bool) {
	if len(snap.Snake) == 0 {
		return snap.Direction, false
	}
	head := snap.Snake[0]

	body := make(map[components.Coord]bool, len(snap.Snake))
	for _, seg := range snap.Snake {
		body[seg] = true
	}
	wrong := make(map[components.Coord]bool, len(snap.Food))
	var targets []components.Coord
	for _, it := range snap.Food {
		if snap.Question.Active && it.Symbol == snap.Question.Target {
			targets = append(targets, it.Position)
		} else {
			wrong[it.Position] = true
		}
	}

	cost := func(c components.Coord) int {
		if body[c] {
			return -1
		}
		if wrong[c] {
			return p.wrongFoodCost
		}
		return 1
	}

	var best []components.Direction
	for _, target := range targets {
		path, ok := p.planner.FindPath(grid, head, target, cost)
		if !ok || len(path) == 0 {
			continue
		}
		if best == nil || len(path) < len(best) {
			best = path
		}
	}

	if best != nil {
		d := best[0]
		need := int(math.Ceil(p.spaceMargin * float64(len(snap.Snake))))
		if d != snap.Direction.Opposite() && space(grid, head.Add(d), body) >= need {
			return d, true
		}
	}
	return safest(grid, head, snap.Direction, body)
}

// safest returns the non-reversing move into the largest open region,
// preferring to keep the current heading on ties.
func safest(grid systems.Grid, head components.Coord, current components.Direction, body map[components.Coord]bool) (components.Direction, bool) {
	bestDir, bestSpace := current, -1
	for _, d := range components.Directions() {
		if d == current.Opposite() {
			continue
		}
		next := head.Add(d)
		if !grid.InBounds(next) || body[next] {
			continue
		}
		sp := space(grid, next, body)
		if sp > bestSpace || (sp == bestSpace && d == current) {
			bestDir, bestSpace = d, sp
		}
	}
	return bestDir, bestSpace >= 0
}

// space counts the free cells reachable from start.
func space(grid systems.Grid, start components.Coord, body map[components.Coord]bool) int {
	if !grid.InBounds(start) || body[start] {
		return 0
	}
	seen := map[components.Coord]bool{start: true}
	queue := []components.Coord{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range components.Directions() {
			n := c.Add(d)
			if seen[n] || !grid.InBounds(n) || body[n] {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return len(seen)
}
