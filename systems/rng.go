package systems

import "math/rand/v2"

// Rand is the random source the rules engine draws from.
// RandInt returns a uniformly distributed integer in [min, maxInclusive].
type Rand interface {
	RandInt(min, maxInclusive int) int
}

// RNG is a seeded Rand backed by math/rand/v2.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG from seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// RandInt implements Rand. If maxInclusive < min it returns min.
func (r *RNG) RandInt(min, maxInclusive int) int {
	if maxInclusive <= min {
		return min
	}
	return min + r.r.IntN(maxInclusive-min+1)
}

// ScriptedRand replays a fixed sequence of values, clamped into the requested
// range. Once the script runs out it defers to Fallback, or returns min when
// Fallback is nil. Intended for tests and replays that need exact placement.
type ScriptedRand struct {
	Values   []int
	Fallback Rand
	calls    int
}

// NewScriptedRand returns a ScriptedRand that yields values in order and then
// continues from a fixed-seed RNG.
func NewScriptedRand(values ...int) *ScriptedRand {
	return &ScriptedRand{Values: values, Fallback: NewRNG(1)}
}

// RandInt implements Rand.
func (s *ScriptedRand) RandInt(min, maxInclusive int) int {
	defer func() { s.calls++ }()
	if s.calls >= len(s.Values) {
		if s.Fallback != nil {
			return s.Fallback.RandInt(min, maxInclusive)
		}
		return min
	}
	v := s.Values[s.calls]
	if v < min {
		return min
	}
	if v > maxInclusive {
		return maxInclusive
	}
	return v
}

// Calls reports how many values have been drawn.
func (s *ScriptedRand) Calls() int {
	return s.calls
}

// Push appends values to the end of the script.
func (s *ScriptedRand) Push(values ...int) {
	s.Values = append(s.Values, values...)
}
