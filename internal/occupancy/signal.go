// Package occupancy implements the estimation core: a synthetic baseline
// signal, aggregation of recent check-ins, and the blend that produces the
// live reading shown on the dashboard.
package occupancy

import "math/rand"

// SignalSource supplies the randomness behind synthetic readings. Tests
// substitute a deterministic sequence.
type SignalSource interface {
	// IntN returns a uniformly distributed integer in [0, n).
	IntN(n int) int
}

type randSource struct{}

func (randSource) IntN(n int) int { return rand.Intn(n) }

// NewRandomSource returns a SignalSource backed by the process RNG.
func NewRandomSource() SignalSource { return randSource{} }

// SequenceSource replays a fixed sequence of values, modulo the requested
// bound. Intended for tests.
type SequenceSource struct {
	Values []int
	idx    int
}

func (s *SequenceSource) IntN(n int) int {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.idx%len(s.Values)]
	s.idx++
	return v % n
}
