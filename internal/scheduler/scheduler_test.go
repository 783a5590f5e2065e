package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls   atomic.Int32
	maxIdle atomic.Int64
}

func (c *countingSweeper) SweepIdle(maxIdle time.Duration) int {
	c.calls.Add(1)
	c.maxIdle.Store(int64(maxIdle))
	return 0
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New(&countingSweeper{}, "not a cron spec", time.Hour, nil)
	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid spec")
	}
	if s.IsRunning() {
		t.Fatal("scheduler should not report running")
	}
}

func TestRunOnce_PassesMaxIdle(t *testing.T) {
	sw := &countingSweeper{}
	s := New(sw, "@every 1h", 45*time.Minute, nil)
	s.RunOnce()
	if sw.calls.Load() != 1 || time.Duration(sw.maxIdle.Load()) != 45*time.Minute {
		t.Fatalf("unexpected sweep: calls=%d maxIdle=%v", sw.calls.Load(), time.Duration(sw.maxIdle.Load()))
	}
}

func TestStart_RunsSweep(t *testing.T) {
	sw := &countingSweeper{}
	s := New(sw, "@every 1s", time.Minute, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()
	if !s.IsRunning() {
		t.Fatal("expected running scheduler")
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if sw.calls.Load() > 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("sweep never ran")
}

func TestSweepers_SweepsEach(t *testing.T) {
	a, b := &countingSweeper{}, &countingSweeper{}
	s := New(Sweepers{a, b}, "@every 1h", time.Minute, nil)
	s.RunOnce()
	if a.calls.Load() != 1 || b.calls.Load() != 1 {
		t.Fatalf("expected each sweeper once: a=%d b=%d", a.calls.Load(), b.calls.Load())
	}
}
