package actor

import "time"

// DefaultRefreshInterval is the window in which repeated refreshes are
// coalesced.
const DefaultRefreshInterval = 300 * time.Millisecond

// Debounce gates a repeated trigger. It lets one call through, then rejects
// unforced calls until Interval has passed.
type Debounce struct {
	Interval time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time

	nextAllowed time.Time
}

// Allow reports whether the trigger may run now. A forced trigger always
// runs. Either way a run pushes the next allowed time forward.
func (d *Debounce) Allow(force bool) bool {
	now := d.now()
	if !force && !now.After(d.nextAllowed) {
		return false
	}
	d.nextAllowed = now.Add(d.Interval)
	return true
}

// NextAllowed returns the earliest time an unforced trigger runs.
func (d *Debounce) NextAllowed() time.Time { return d.nextAllowed }

func (d *Debounce) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
