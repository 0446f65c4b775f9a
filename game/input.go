package game

import "github.com/pthm-cable/quizsnake/components"

// PressDirection feeds a direction into the pending buffer.
//
// At most one change is accepted per movement step. A press equal to the
// pending direction or opposite to the committed one is dropped and does not
// use up the step's change. Before the first step any press starts play.
// After game over presses are ignored.
func (s *Session) PressDirection(d components.Direction) {
	if !d.Valid() {
		return
	}

	switch s.state {
	case GameOver:
		return
	case NotStarted:
		s.state = Playing
		s.logger.Debug("game_started", "game", s.games, "direction", d.String())
	}

	if s.inputLocked {
		return
	}
	if d == s.pending || d == s.current.Opposite() {
		return
	}
	s.pending = d
	s.inputLocked = true
}
