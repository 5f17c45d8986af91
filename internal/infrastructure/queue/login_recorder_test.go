package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubToucher struct {
	mu      sync.Mutex
	touched []string
	err     error
}

func (s *stubToucher) TouchLogin(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = append(s.touched, username)
	return s.err
}

func (s *stubToucher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.touched)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestLoginRecorder_AppliesUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	toucher := &stubToucher{}
	recorder := NewLoginRecorder(2, toucher, zerolog.Nop())
	recorder.Start(ctx)

	recorder.Record("amy")
	recorder.Record("bob")
	recorder.Record("amy")

	waitFor(t, func() bool { return toucher.count() == 3 })
}

func TestLoginRecorder_FailureDoesNotStopWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	toucher := &stubToucher{err: errors.New("store down")}
	recorder := NewLoginRecorder(1, toucher, zerolog.Nop())
	recorder.Start(ctx)

	recorder.Record("amy")
	recorder.Record("bob")

	waitFor(t, func() bool { return toucher.count() == 2 })
}

func TestLoginRecorder_DefaultWorkerCount(t *testing.T) {
	recorder := NewLoginRecorder(0, &stubToucher{}, zerolog.Nop())
	if len(recorder.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(recorder.workers))
	}
}
