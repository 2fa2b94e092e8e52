package application

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/davarch/bwatch/internal/domain"
	"go.uber.org/zap"
)

// Scheduler runs a poll cycle every interval. The constant backoff only sets
// the cadence; a failed target waits for the next cycle like any other.
type Scheduler struct {
	log       *zap.Logger
	use       *PollUseCase
	pauseFile string

	mu      sync.RWMutex
	every   time.Duration
	targets []domain.Target
	reset   chan struct{}
}

func NewScheduler(l *zap.Logger, u *PollUseCase, targets []domain.Target, every time.Duration, pauseFile string) *Scheduler {
	return &Scheduler{
		log: l, use: u, targets: targets, every: every, pauseFile: pauseFile,
		reset: make(chan struct{}, 1),
	}
}

// Update swaps the targets and interval, e.g. after a config reload. A new
// interval takes effect right away.
func (s *Scheduler) Update(targets []domain.Target, every time.Duration) {
	s.mu.Lock()
	changed := every > 0 && every != s.every
	s.targets = targets
	if every > 0 {
		s.every = every
	}
	s.mu.Unlock()

	s.log.Info("config reloaded", zap.Int("targets", len(targets)), zap.Duration("every", every))
	if changed {
		select {
		case s.reset <- struct{}{}:
		default:
		}
	}
}

// Reconfigure replaces the use case and pause file from a reloaded config,
// so a new request timeout or summary file applies from the next cycle.
func (s *Scheduler) Reconfigure(u *PollUseCase, pauseFile string) {
	s.mu.Lock()
	s.use = u
	s.pauseFile = pauseFile
	s.mu.Unlock()
}

func (s *Scheduler) Run(ctx context.Context) {
	for {
		if !s.runTicker(ctx) {
			return
		}
	}
}

// runTicker reports whether Run should start over with a new interval.
func (s *Scheduler) runTicker(ctx context.Context) bool {
	s.mu.RLock()
	every := s.every
	s.mu.RUnlock()

	t := backoff.NewTicker(backoff.WithContext(backoff.NewConstantBackOff(every), ctx))
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-s.reset:
			return true
		case _, ok := <-t.C:
			if !ok {
				return false
			}
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.isPaused() {
		s.log.Debug("paused: skipping poll")
		return
	}
	s.runAll(ctx)
}

func (s *Scheduler) isPaused() bool {
	s.mu.RLock()
	pauseFile := s.pauseFile
	s.mu.RUnlock()

	if pauseFile == "" {
		return false
	}
	_, err := os.Stat(pauseFile)
	return err == nil
}

func (s *Scheduler) runAll(ctx context.Context) {
	s.mu.RLock()
	targets := make([]domain.Target, len(s.targets))
	copy(targets, s.targets)
	use := s.use
	s.mu.RUnlock()

	if _, err := use.PollOnce(ctx, targets); err != nil {
		s.log.Warn("report failed", zap.Error(err))
	}
}
