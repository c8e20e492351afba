package joytransfer

import "time"

// Minimum delays measured against Nintendo Switch firmware 12.1.0 and 13.0.0.
// Shorter values make the console drop presses.
const (
	MinHold       = 50 * time.Millisecond
	MinRelease    = 20 * time.Millisecond
	MinWakeSettle = 50 * time.Millisecond

	DefaultPacing = 200 * time.Millisecond
	DefaultSettle = 2 * time.Second
)

// Timing holds the pulse delays and the supervisor pacing.
type Timing struct {
	// Hold is how long a button stays pressed.
	Hold time.Duration
	// Release is the gap after a release before the next event.
	Release time.Duration
	// WakeSettle follows the keep-alive flush of the wake token.
	WakeSettle time.Duration
	// Pacing is the delay after forwarding a console line.
	Pacing time.Duration
	// Settle is the wait between sessions so the console can release the link.
	Settle time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Hold:       MinHold,
		Release:    MinRelease,
		WakeSettle: MinWakeSettle,
		Pacing:     DefaultPacing,
		Settle:     DefaultSettle,
	}
}

// Clamp raises the pulse delays to their minimums. A negative Pacing or
// Settle falls back to its default; zero disables the wait.
func (t Timing) Clamp() Timing {
	if t.Hold < MinHold {
		t.Hold = MinHold
	}
	if t.Release < MinRelease {
		t.Release = MinRelease
	}
	if t.WakeSettle < MinWakeSettle {
		t.WakeSettle = MinWakeSettle
	}
	if t.Pacing < 0 {
		t.Pacing = DefaultPacing
	}
	if t.Settle < 0 {
		t.Settle = DefaultSettle
	}
	return t
}
