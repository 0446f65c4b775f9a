package game

import "time"

// Tick advances the session to now and returns the events it produced.
//
// At most one movement step is taken per call, and only once now has reached
// the move deadline. Calls before the deadline, or outside Playing, change
// nothing and return only events queued by a restart.
func (s *Session) Tick(now time.Time) []Event {
	events := s.queued
	s.queued = nil

	if s.state != Playing {
		return events
	}
	if !s.deadline.IsZero() && now.Before(s.deadline) {
		return events
	}
	return s.step(now, events)
}

// step performs one movement step and appends its events.
func (s *Session) step(now time.Time, events []Event) []Event {
	if s.pending != s.current.Opposite() {
		s.current = s.pending
	}
	s.inputLocked = false
	s.tick++

	head := s.snake.Advance(s.current)

	// Evaluated against the grown body, before the tail moves.
	if !s.grid.InBounds(head) || s.snake.OccupiesSelf(head, true) {
		s.snake.Retract()
		s.state = GameOver

		ev := s.newEvent(EventGameOver)
		ev.CrashPoint = head
		s.notify(ev)
		s.logger.Info("game_over", "game", s.games, "event", ev)
		return append(events, ev)
	}

	res := s.food.ResolveEat(head, s.snake)
	if !res.Ate {
		s.snake.Shrink()
	}

	var scored bool
	points := s.cfg.Food.Points
	if res.Correct {
		scored = s.score.Apply(points)
	}

	moved := s.newEvent(EventMoved)
	s.notify(moved)
	events = append(events, moved)

	switch {
	case res.Ate && res.Correct && scored:
		ev := s.newEvent(EventAteCorrect)
		ev.Item = res.Item
		ev.Points = points
		s.notify(ev)
		events = append(events, ev)
	case res.Ate && !res.Correct:
		ev := s.newEvent(EventAteWrong)
		ev.Item = res.Item
		s.notify(ev)
		events = append(events, ev)
	}

	s.deadline = now.Add(s.cfg.Snake.TickInterval)
	return events
}
