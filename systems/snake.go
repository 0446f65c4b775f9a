package systems

import "github.com/pthm-cable/quizsnake/components"

// Snake is the ordered body of the player. Index 0 is the head.
type Snake struct {
	body []components.Coord
}

// NewSnake lays out a snake of the given length with its head at start,
// trailing away from dir.
func NewSnake(start components.Coord, dir components.Direction, length int) *Snake {
	s := &Snake{}
	s.Reset(start, dir, length)
	return s
}

// Reset rebuilds the body in place. Length is clamped to at least 1.
func (s *Snake) Reset(start components.Coord, dir components.Direction, length int) {
	if length < 1 {
		length = 1
	}
	s.body = s.body[:0]
	back := dir.Opposite()
	c := start
	for i := 0; i < length; i++ {
		s.body = append(s.body, c)
		c = c.Add(back)
	}
}

// Head returns the head segment.
func (s *Snake) Head() components.Coord {
	return s.body[0]
}

// Len returns the number of segments.
func (s *Snake) Len() int {
	return len(s.body)
}

// Segments returns a copy of the body, head first.
func (s *Snake) Segments() []components.Coord {
	out := make([]components.Coord, len(s.body))
	copy(out, s.body)
	return out
}

// Advance inserts head+dir at the front and returns it. Growth is decided
// separately by whether Shrink is called afterwards.
func (s *Snake) Advance(dir components.Direction) components.Coord {
	head := s.body[0].Add(dir)
	s.body = append(s.body, components.Coord{})
	copy(s.body[1:], s.body[:len(s.body)-1])
	s.body[0] = head
	return head
}

// Shrink removes the tail segment. The head is never removed.
func (s *Snake) Shrink() {
	if len(s.body) > 1 {
		s.body = s.body[:len(s.body)-1]
	}
}

// Retract removes the head segment, undoing an Advance.
func (s *Snake) Retract() {
	if len(s.body) > 1 {
		s.body = s.body[1:]
	}
}

// OccupiesSelf reports whether p is on the body, optionally ignoring the head.
func (s *Snake) OccupiesSelf(p components.Coord, skipHead bool) bool {
	start := 0
	if skipHead {
		start = 1
	}
	for _, seg := range s.body[start:] {
		if seg == p {
			return true
		}
	}
	return false
}

// Occupies reports whether any segment, head included, is on p.
func (s *Snake) Occupies(p components.Coord) bool {
	return s.OccupiesSelf(p, false)
}
