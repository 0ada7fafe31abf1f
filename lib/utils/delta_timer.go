package utils

import "time"

// DeltaTimer measures the time between consecutive events.
type DeltaTimer struct {
	time.Time
}

func (d *DeltaTimer) Next() time.Duration {
	// acquire timestamp exactly once to ensure we're not accumulating error
	now := time.Now()

	defer d.Set(now)
	if d.IsZero() {
		return 0
	}
	return now.Sub(d.Time)
}

func (d *DeltaTimer) Set(t time.Time) {
	d.Time = t
}

// Rate converts the interval between two events into events per second.
// There is no smoothing: a single late frame shows up as a dip.
func Rate(dt time.Duration) float64 {
	if dt <= 0 {
		return 0
	}
	return float64(time.Second) / float64(dt)
}
