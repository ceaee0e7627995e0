package clock

import "time"

// Clock abstracts time for components with expiry logic so tests can pin it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystem returns a Clock backed by time.Now.
func NewSystem() Clock { return systemClock{} }

// Fixed is a Clock frozen at a given instant. Advance moves it forward.
type Fixed struct {
	now time.Time
}

func NewFixed(now time.Time) *Fixed { return &Fixed{now: now} }

func (f *Fixed) Now() time.Time { return f.now }

func (f *Fixed) Advance(d time.Duration) { f.now = f.now.Add(d) }
