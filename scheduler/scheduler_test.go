package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingUpdater struct {
	calls atomic.Int32
	done  chan struct{}
	err   error
}

func (u *countingUpdater) UpdateStatuses(ctx context.Context) (int, error) {
	if _, ok := ctx.Deadline(); !ok {
		panic("status job must run with a deadline")
	}
	u.calls.Add(1)
	u.done <- struct{}{}
	return 1, u.err
}

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	t.Cleanup(func() {
		if err := s.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})
	return s
}

func TestAddJobValidation(t *testing.T) {
	s := newService(t)

	if _, err := s.AddJob(" ", "* * * * *", func() {}); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("empty name: got %v", err)
	}
	if _, err := s.AddJob("job", "", func() {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("empty cron: got %v", err)
	}
	if _, err := s.AddJob("job", "not a cron", func() {}); err == nil {
		t.Fatal("expected an error for an invalid cron expression")
	}
}

func TestTournamentStatusJobRunsUpdater(t *testing.T) {
	s := newService(t)
	u := &countingUpdater{done: make(chan struct{}, 1), err: errors.New("db down")}

	job, err := s.AddTournamentStatusJob(context.Background(), "0 0 1 1 *", u)
	if err != nil {
		t.Fatalf("AddTournamentStatusJob: %v", err)
	}
	if job.Name() != "tournament-status" {
		t.Fatalf("job name = %q", job.Name())
	}

	if err := job.RunNow(); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	select {
	case <-u.done:
	case <-time.After(5 * time.Second):
		t.Fatal("updater was not called")
	}
	if got := u.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	if err := s.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
