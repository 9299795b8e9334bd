// Package ensemble implements bootstrap-aggregated random forests on top of
// the CART tree builder. All randomness is drawn from an explicit seeded
// generator, so identical inputs always produce identical forests.
package ensemble

// LCG is a small linear-congruential generator. It replaces ambient global
// randomness for bootstrap resampling and per-split feature subsampling,
// turning implicit mutable state into explicit, testable state.
type LCG struct {
	state uint64
}

// Numerical Recipes constants, modulus 2^32.
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

// NewLCG creates a generator from a seed. Equal seeds yield equal sequences.
func NewLCG(seed int64) *LCG {
	return &LCG{state: uint64(seed) % lcgModulus}
}

// Next advances the generator and returns a value in [0, 1).
func (g *LCG) Next() float64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(g.state) / float64(lcgModulus)
}

// Intn returns a value in [0, n). n must be positive.
func (g *LCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.Next() * float64(n))
}
