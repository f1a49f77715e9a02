// Package landing computes what the public landing page shows: the countdown
// to the event, whether registrations are still open, and whether capacity
// has been reached.
package landing

import "time"

// Remaining is the countdown split the page renders. All fields clamp to
// zero once the target passes; they never go negative.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Countdown tracks a fixed target instant.
type Countdown struct {
	Target time.Time
}

// Until returns the time left to the target at now, clamped at zero.
func (c Countdown) Until(now time.Time) Remaining {
	d := c.Target.Sub(now)
	if d < 0 {
		return Remaining{}
	}
	return Remaining{
		Days:    int(d / (24 * time.Hour)),
		Hours:   int(d % (24 * time.Hour) / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
		Seconds: int(d % time.Minute / time.Second),
	}
}

// Gate decides whether the registration window is open. It is a pure
// function of time against the fixed deadline; no store access.
type Gate struct {
	Deadline time.Time
}

// RegistrationsOpen reports whether now is still before the deadline.
func (g Gate) RegistrationsOpen(now time.Time) bool {
	return now.Before(g.Deadline)
}
