package domain

import "time"

// Clock supplies the current time to ledger and reporting code.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Useful for tests and backfills.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
