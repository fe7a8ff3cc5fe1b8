package scheduling

import "time"

// Clock supplies the current time. Elapsed-time math goes through it so the
// rotation policy and sweep are testable without real waiting.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall-clock implementation used in production wiring.
func RealClock() Clock { return realClock{} }
