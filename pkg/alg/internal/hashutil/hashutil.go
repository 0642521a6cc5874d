// Package hashutil provides the splitmix64 mixing functions shared by the
// probabilistic structures in pkg/alg.
//
// Both functions use the splitmix64 finalizer by Vigna (2014), which provides
// full-avalanche mixing across all 64 bits.
package hashutil

// Splitmix64 constants from the splitmix64 finalizer by Vigna (2014).
const (
	MixShift1 = 30
	MixMul1   = 0xbf58476d1ce4e5b9
	MixShift2 = 27
	MixMul2   = 0x94d049bb133111eb
	MixShift3 = 31

	// splitmix64Increment is the golden-ratio-derived state increment.
	splitmix64Increment = 0x9e3779b97f4a7c15
)

// Mix64 applies the splitmix64 finalizer without advancing any state.
func Mix64(v uint64) uint64 {
	v ^= v >> MixShift1
	v *= MixMul1
	v ^= v >> MixShift2
	v *= MixMul2
	v ^= v >> MixShift3

	return v
}

// Splitmix64 advances state by the golden-ratio increment and mixes the result.
func Splitmix64(state uint64) uint64 {
	return Mix64(state + splitmix64Increment)
}
