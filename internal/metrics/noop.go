package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRegistered is a no-op.
func (n *NoopRecorder) IncRegistered() {}

// IncRegistrationConflict is a no-op.
func (n *NoopRecorder) IncRegistrationConflict() {}

// IncAvatarStored is a no-op.
func (n *NoopRecorder) IncAvatarStored() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// ObservePasswordHash is a no-op.
func (n *NoopRecorder) ObservePasswordHash(duration time.Duration) {}
