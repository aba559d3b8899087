package kernel

import "math"

// VTime defines a point in simulated time, measured in seconds since the
// simulation started. It is a total order: any two VTime values can be
// compared and subtracted.
type VTime float64

// Duration defines a span of simulated time, in seconds.
type Duration float64

// Add returns the time point d seconds after t.
func (t VTime) Add(d Duration) VTime {
	return t + VTime(d)
}

// Sub returns the duration between t and an earlier time point other.
func (t VTime) Sub(other VTime) Duration {
	return Duration(t - other)
}

// Before reports whether t happens strictly before other.
func (t VTime) Before(other VTime) bool {
	return t < other
}

// After reports whether t happens strictly after other.
func (t VTime) After(other VTime) bool {
	return t > other
}

// infiniteFuture is a VTime later than any schedulable event, usable as a
// "no event scheduled" sentinel. fireDueEvents does not use it: there an
// empty pending-event queue shows up as a nil Peek.
const infiniteFuture = VTime(math.MaxFloat64)

// Clock is the kernel's monotone view of simulated time. now() only ever
// changes between event firings (see Engine.Run); it never advances while
// an actor or the maestro is executing user-supplied code.
type Clock interface {
	Now() VTime
}
