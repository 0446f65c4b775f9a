// Package game runs a quiz snake session: it owns the board, applies the
// movement and feeding rules on each tick and reports what changed as events.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/quizsnake/components"
	"github.com/pthm-cable/quizsnake/config"
	"github.com/pthm-cable/quizsnake/systems"
)

// State is the session lifecycle state.
type State uint8

const (
	NotStarted State = iota
	Playing
	GameOver
)

var stateNames = [...]string{
	NotStarted: "not_started",
	Playing:    "playing",
	GameOver:   "game_over",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Options configures a new session.
type Options struct {
	Config *config.Config // nil uses the embedded defaults
	Rand   systems.Rand   // nil uses a seeded RNG
	Seed   int64
	Logger *slog.Logger // nil uses slog.Default()
}

// Session holds the complete state of one game. It is not safe for
// concurrent use; all calls must come from the goroutine driving the clock.
type Session struct {
	cfg    *config.Config
	logger *slog.Logger

	grid  systems.Grid
	snake *systems.Snake
	food  *systems.FoodPool
	score systems.Scoreboard

	// State
	state       State
	current     components.Direction
	pending     components.Direction
	inputLocked bool // a direction change was accepted for the coming step
	deadline    time.Time
	tick        int64
	games       int

	queued    []Event // delivered at the head of the next Tick result
	observers []func(Event)
}

// NewSession builds a session from opts. The board is laid out and the first
// question chosen immediately; play begins with the first direction press.
func NewSession(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Default(); err != nil {
			return nil, err
		}
	} else {
		// Validate fills Derived; the caller's config stays untouched.
		c := *cfg
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("new session: %w", err)
		}
		cfg = &c
	}

	rng := opts.Rand
	if rng == nil {
		rng = systems.NewRNG(opts.Seed)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	grid := systems.NewGrid(cfg.Grid.Width, cfg.Grid.Height)
	s := &Session{
		cfg:    cfg,
		logger: logger,
		grid:   grid,
		snake:  systems.NewSnake(cfg.Derived.Start, cfg.Derived.InitialDirection, cfg.Snake.InitialLength),
		food:   systems.NewFoodPool(grid, cfg.Food.Count, cfg.Catalog, rng),
	}
	s.reset()
	s.state = NotStarted
	return s, nil
}

// Config returns the configuration the session was built with.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Score returns the current score.
func (s *Session) Score() int {
	return s.score.Value()
}

// Steps returns the number of movement steps taken in the current game.
func (s *Session) Steps() int64 {
	return s.tick
}

// Games returns how many games have been played, counting the current one.
func (s *Session) Games() int {
	return s.games
}

// Direction returns the committed movement direction.
func (s *Session) Direction() components.Direction {
	return s.current
}

// Grid returns the board dimensions.
func (s *Session) Grid() systems.Grid {
	return s.grid
}

// Observe registers fn to receive every event as it is emitted.
func (s *Session) Observe(fn func(Event)) {
	s.observers = append(s.observers, fn)
}

// Snapshot returns a detached copy of everything a renderer needs.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:     s.state,
		Snake:     s.snake.Segments(),
		Direction: s.current,
		Food:      s.food.Items(),
		Question:  s.food.Question(),
		Score:     s.score.Value(),
	}
}
