package service

import "time"

// Clock is the injected time source. All expiry logic is a pure function of
// (start time, time limit, optional explicit end time, now), so tests pin
// "now" with a fake and the lifecycle math becomes deterministic.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewClock() Clock { return systemClock{} }
