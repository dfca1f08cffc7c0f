package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Registered                uint64
	RegistrationConflicts     uint64
	AvatarsStored             uint64
	LoginsSucceeded           uint64
	LoginsFailed              uint64
	LoginErrors               uint64
	PasswordHashCount         uint64
	PasswordHashDurationTotal int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	registered                uint64
	registrationConflicts     uint64
	avatarsStored             uint64
	loginsSucceeded           uint64
	loginsFailed              uint64
	loginErrors               uint64
	passwordHashCount         uint64
	passwordHashDurationTotal int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Registered:                atomic.LoadUint64(&m.registered),
		RegistrationConflicts:     atomic.LoadUint64(&m.registrationConflicts),
		AvatarsStored:             atomic.LoadUint64(&m.avatarsStored),
		LoginsSucceeded:           atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:              atomic.LoadUint64(&m.loginsFailed),
		LoginErrors:               atomic.LoadUint64(&m.loginErrors),
		PasswordHashCount:         atomic.LoadUint64(&m.passwordHashCount),
		PasswordHashDurationTotal: atomic.LoadInt64(&m.passwordHashDurationTotal),
	}
}

// IncRegistered increments the registered users counter.
func (m *InMemoryRecorder) IncRegistered() {
	atomic.AddUint64(&m.registered, 1)
}

// IncRegistrationConflict increments the duplicate email counter.
func (m *InMemoryRecorder) IncRegistrationConflict() {
	atomic.AddUint64(&m.registrationConflicts, 1)
}

// IncAvatarStored increments the stored avatars counter.
func (m *InMemoryRecorder) IncAvatarStored() {
	atomic.AddUint64(&m.avatarsStored, 1)
}

// IncLogin increments the login counter for status.
func (m *InMemoryRecorder) IncLogin(status string) {
	switch status {
	case LoginSuccess:
		atomic.AddUint64(&m.loginsSucceeded, 1)
	case LoginFailed:
		atomic.AddUint64(&m.loginsFailed, 1)
	default:
		atomic.AddUint64(&m.loginErrors, 1)
	}
}

// ObservePasswordHash records password hashing duration.
func (m *InMemoryRecorder) ObservePasswordHash(duration time.Duration) {
	atomic.AddUint64(&m.passwordHashCount, 1)
	atomic.AddInt64(&m.passwordHashDurationTotal, duration.Nanoseconds())
}
