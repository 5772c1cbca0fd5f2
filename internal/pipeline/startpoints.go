package pipeline

// splitMix64 is the keyed mixing function seeded by table_id used to
// permute startpoints 0..m0-1 pseudo-randomly while remaining
// reproducible across independent runs with identical parameters.
type splitMix64 struct {
	state uint64
}

func newSplitMix64(seed uint64) *splitMix64 {
	return &splitMix64{state: seed}
}

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// startpointSeed derives the SplitMix64 seed for a table from its id.
// Mixed through a constant so table 0 and table id 0 used elsewhere in
// the mixer don't produce a visibly related stream.
func startpointSeed(tableID uint32) uint64 {
	s := newSplitMix64(uint64(tableID)*0x2545F4914F6CDD1D + 1)
	return s.next()
}

// Startpoints returns m0 indices in [0, m0), a Fisher-Yates permutation
// of 0..m0-1 driven by a table-id-seeded SplitMix64 stream. Deterministic
// for a given (tableID, m0): two runs with the same parameters produce
// byte-identical output, which the generation-determinism property
// requires transitively.
func Startpoints(tableID uint32, m0 uint64) []uint64 {
	pts := make([]uint64, m0)
	for i := range pts {
		pts[i] = uint64(i)
	}
	rng := newSplitMix64(startpointSeed(tableID))
	for i := len(pts) - 1; i > 0; i-- {
		j := rng.next() % uint64(i+1)
		pts[i], pts[j] = pts[j], pts[i]
	}
	return pts
}
