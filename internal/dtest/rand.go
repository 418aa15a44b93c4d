package dtest

import (
	"crypto/sha256"
	"math/rand/v2"
	"testing"
)

// RandomDataForTest returns sz pseudorandom bytes
// seeded from the test name,
// so a failing sequence reproduces on every run of that test.
func RandomDataForTest(t testing.TB, sz int) []byte {
	out := make([]byte, sz)
	if _, err := chachaForTest(t).Read(out); err != nil {
		panic(err)
	}
	return out
}

// RandomLengthsForTest returns n pseudorandom lengths in [0, maxLen),
// seeded from the test name.
func RandomLengthsForTest(t testing.TB, n, maxLen int) []int {
	r := rand.New(chachaForTest(t))
	out := make([]int, n)
	for i := range out {
		out[i] = r.IntN(maxLen)
	}
	return out
}

func chachaForTest(t testing.TB) *rand.ChaCha8 {
	// A sha256 digest is exactly the size of a chacha8 seed,
	// and it does not limit the length of the test name.
	seed := sha256.Sum256([]byte(t.Name()))
	return rand.NewChaCha8(seed)
}
