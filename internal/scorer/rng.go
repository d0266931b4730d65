package scorer

// splitmix is a small deterministic pseudo-random generator. Identical seeds
// produce identical draw sequences on every platform, which the scorer depends
// on for reproducible rankings. Do not replace with a wall-clock or entropy
// seeded generator.
type splitmix struct {
	state uint64
}

func newSplitmix(seed uint64) *splitmix {
	return &splitmix{state: seed}
}

// next returns the next 64-bit value in the sequence.
func (s *splitmix) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// float64 returns a uniform value in [0, 1).
func (s *splitmix) float64() float64 {
	return float64(s.next()>>11) / (1 << 53)
}
