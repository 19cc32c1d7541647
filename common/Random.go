package common

// RandSource is the single generator every random draw of a run flows
// through. *rand.Rand from golang.org/x/exp/rand satisfies it, and so does
// any scripted source used in tests. Seed and Uint64 make it usable as a
// gonum distuv source.
type RandSource interface {
	Float64() float64
	Intn(n int) int
	Perm(n int) []int
	Uint64() uint64
	Seed(seed uint64)
}
