//go:build !integration

package sched

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"event-ingestion/internal/domain/model"
)

type fakeLister struct {
	calls int32
	jobs  []*model.Job
	err   error
}

func (f *fakeLister) ListStale(_ context.Context, olderThan time.Duration) ([]*model.Job, error) {
	atomic.AddInt32(&f.calls, 1)
	if olderThan != 0 {
		return nil, errors.New("monitor must use the configured default threshold")
	}
	return f.jobs, f.err
}

func quietLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestStaleMonitor_Check(t *testing.T) {
	t.Run("counts stale jobs", func(t *testing.T) {
		l := &fakeLister{jobs: []*model.Job{{ID: 1}, {ID: 4}}}
		m := NewStaleMonitor(time.Minute, l, quietLogger())
		if n := m.Check(context.Background()); n != 2 {
			t.Errorf("Check() = %d, want 2", n)
		}
	})

	t.Run("nothing stale", func(t *testing.T) {
		m := NewStaleMonitor(time.Minute, &fakeLister{}, quietLogger())
		if n := m.Check(context.Background()); n != 0 {
			t.Errorf("Check() = %d, want 0", n)
		}
	})

	t.Run("store error", func(t *testing.T) {
		m := NewStaleMonitor(time.Minute, &fakeLister{err: errors.New("down")}, quietLogger())
		if n := m.Check(context.Background()); n != -1 {
			t.Errorf("Check() = %d, want -1", n)
		}
	})
}

func TestStaleMonitor_RunStopsOnCancel(t *testing.T) {
	l := &fakeLister{}
	m := NewStaleMonitor(5*time.Millisecond, l, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&l.calls) < 2 {
		select {
		case <-deadline:
			t.Fatal("monitor did not tick")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}
