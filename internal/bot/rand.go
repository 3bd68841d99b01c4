package bot

import (
	"math/rand"
	"time"
)

// newRng returns the per-match random source. A zero seed draws one from the
// clock; any other seed makes roam targets and random strategies reproducible.
func newRng(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
