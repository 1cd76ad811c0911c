package combat

import "math/rand/v2"

// Roller supplies uniform draws in [0,1).
// *rand.Rand satisfies it; tests inject fixed sequences.
type Roller interface {
	Float64() float64
}

// NewRoller returns a seeded PCG source so a battle can be replayed from its seed.
// Seed 0 is replaced with 1.
func NewRoller(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// FixedRoller replays a fixed sequence of draws, cycling when exhausted.
// Used by tests and by scripted replays.
type FixedRoller struct {
	Values []float64
	next   int
}

// Float64 returns the next value in the sequence (0 when empty).
func (r *FixedRoller) Float64() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	v := r.Values[r.next%len(r.Values)]
	r.next++
	return v
}
