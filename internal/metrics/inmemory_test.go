package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncRegistered()
	m.IncRegistered()
	m.IncRegistrationConflict()
	m.IncAvatarStored()
	m.IncLogin(LoginSuccess)
	m.IncLogin(LoginFailed)
	m.IncLogin(LoginFailed)
	m.IncLogin(LoginError)
	m.ObservePasswordHash(2 * time.Millisecond)
	m.ObservePasswordHash(3 * time.Millisecond)

	snap := m.Snapshot()
	want := Snapshot{
		Registered:                2,
		RegistrationConflicts:     1,
		AvatarsStored:             1,
		LoginsSucceeded:           1,
		LoginsFailed:              2,
		LoginErrors:               1,
		PasswordHashCount:         2,
		PasswordHashDurationTotal: (5 * time.Millisecond).Nanoseconds(),
	}
	if snap != want {
		t.Errorf("Snapshot() = %+v, want %+v", snap, want)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncRegistered()
			m.IncLogin(LoginSuccess)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.Registered != 50 || snap.LoginsSucceeded != 50 {
		t.Errorf("unexpected counters: %+v", snap)
	}
}

func TestNoopRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder = NewNoop()
	r.IncRegistered()
	r.IncRegistrationConflict()
	r.IncAvatarStored()
	r.IncLogin(LoginSuccess)
	r.ObservePasswordHash(time.Second)
}
