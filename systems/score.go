package systems

// Scoreboard accumulates the session score.
type Scoreboard struct {
	score int
}

// Apply adds points to the score. It returns false when nothing visible
// happened: zero or negative awards leave the score untouched.
func (s *Scoreboard) Apply(points int) bool {
	if points <= 0 {
		return false
	}
	s.score += points
	return true
}

// Value returns the current score.
func (s *Scoreboard) Value() int {
	return s.score
}

// Reset sets the score back to zero.
func (s *Scoreboard) Reset() {
	s.score = 0
}
