package chat

import (
	"math/rand"
	"time"
)

// Pacer maps a fragment index to the delay slept before revealing that
// fragment. The delays simulate human typing cadence and are a product
// behavior, not an artifact.
type Pacer func(fragmentIndex int) time.Duration

// DefaultPacer waits 800-1200ms before the first fragment and 600-1000ms
// before each subsequent one.
func DefaultPacer(fragmentIndex int) time.Duration {
	if fragmentIndex == 0 {
		return 800*time.Millisecond + time.Duration(rand.Int63n(400))*time.Millisecond
	}
	return 600*time.Millisecond + time.Duration(rand.Int63n(400))*time.Millisecond
}

// NoDelay is a Pacer for tests.
func NoDelay(int) time.Duration {
	return 0
}
