package game

import "time"

// RequestRestart starts a new game if the current one is over. It returns
// false, changing nothing, in any other state.
//
// The new game begins in Playing without waiting for a direction press.
// Observers see the Restarted event immediately; Tick callers receive it at
// the head of the next result.
func (s *Session) RequestRestart() bool {
	if s.state != GameOver {
		return false
	}

	final := s.score.Value()
	s.reset()
	s.state = Playing

	ev := s.newEvent(EventRestarted)
	s.queued = append(s.queued, ev)
	s.notify(ev)

	s.logger.Debug("game_restarted", "game", s.games, "previous_score", final)
	return true
}

// reset puts the board back to its initial layout. The caller sets state.
func (s *Session) reset() {
	cfg := s.cfg

	s.score.Reset()
	s.snake.Reset(cfg.Derived.Start, cfg.Derived.InitialDirection, cfg.Snake.InitialLength)
	s.current = cfg.Derived.InitialDirection
	s.pending = s.current
	s.inputLocked = false
	s.deadline = time.Time{}
	s.tick = 0
	s.games++

	s.food.Reset(s.snake)
}
