package app

import "time"

// SystemClock implements ports.Clock with wall-clock time.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
