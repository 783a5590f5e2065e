package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes sessions idle for longer than maxIdle.
type Sweeper interface {
	SweepIdle(maxIdle time.Duration) int
}

// Sweepers sweeps each registry in turn.
type Sweepers []Sweeper

func (ss Sweepers) SweepIdle(maxIdle time.Duration) int {
	n := 0
	for _, s := range ss {
		n += s.SweepIdle(maxIdle)
	}
	return n
}

// Scheduler runs the periodic idle-session sweep.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	maxIdle time.Duration
	spec    string
	logger  *slog.Logger
}

func New(sweeper Sweeper, spec string, maxIdle time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		sweeper: sweeper,
		maxIdle: maxIdle,
		spec:    spec,
		logger:  logger,
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec, "max_idle", s.maxIdle.String())
	return nil
}

// RunOnce performs a single sweep.
func (s *Scheduler) RunOnce() {
	removed := s.sweeper.SweepIdle(s.maxIdle)
	s.logger.Debug("session sweep finished", "removed", removed)
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
