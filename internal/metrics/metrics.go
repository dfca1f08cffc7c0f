// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
	LoginError   = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Registration metrics
	IncRegistered()
	IncRegistrationConflict()
	IncAvatarStored()

	// Login metrics
	IncLogin(status string) // status: "success", "failed" or "error"

	// Password hashing cost
	ObservePasswordHash(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
