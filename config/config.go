// Package config holds the small, store-and-clock-only configuration the scheduling core reads
// from; file and environment loading are left to callers, since that's outside the core's
// contract.
package config

import (
	"time"

	"github.com/stijnseghers/eva/store"
)

// Clock returns the current instant. Production binds it to time.Now; tests inject a
// deterministic function so scheduling calls are reproducible.
type Clock func() time.Time

// Configuration is what eva.Schedule needs to run a scheduling call: a store to read tasks and
// segments from, a default strategy name, and a clock.
type Configuration struct {
	Store              store.Store
	SchedulingStrategy string
	Now                Clock
}

// RealClock returns the system clock in UTC, the clock production configurations use.
func RealClock() time.Time {
	return time.Now().UTC()
}
