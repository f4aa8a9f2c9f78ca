package dtest

import (
	"crypto/sha256"
	"math/rand/v2"
	"testing"
)

// RandomIntsForTest returns n pseudorandom ints in [0, limit),
// derived from a seed based on the test name,
// so that failures reproduce across runs.
func RandomIntsForTest(t *testing.T, n, limit int) []int {
	// Sha256 happens to be the right size for the chacha8 seed,
	// and this fits well anyway since that means
	// we are not limited by the length of any particular test name.
	seed := sha256.Sum256([]byte(t.Name()))
	r := rand.New(rand.NewChaCha8(seed))

	out := make([]int, n)
	for i := range out {
		out[i] = r.IntN(limit)
	}

	return out
}
