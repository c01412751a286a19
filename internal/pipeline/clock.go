package pipeline

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze stage timing.
// Production code uses the real clock; tests inject a fake for
// deterministic durations.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for stage timing. Pass nil to reset to
// real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
