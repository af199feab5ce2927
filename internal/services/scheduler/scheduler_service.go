// Package scheduler drives the periodic analysis cycle with cron.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/statera/internal/interfaces"
)

// AnalysisRunner executes one full analysis pass
type AnalysisRunner func(ctx context.Context) error

// Service implements SchedulerService
type Service struct {
	cron     *cron.Cron
	schedule string
	runner   AnalysisRunner
	logger   arbor.ILogger

	mu        sync.Mutex
	isRunning bool
	started   bool
}

// NewService creates a scheduler that invokes runner on the given cron
// schedule. Overlapping passes are skipped, not queued.
func NewService(schedule string, runner AnalysisRunner, logger arbor.ILogger) (interfaces.SchedulerService, error) {
	if schedule == "" {
		schedule = "0 * * * *" // Default: hourly
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return &Service{
		cron:     cron.New(),
		schedule: schedule,
		runner:   runner,
		logger:   logger,
	}, nil
}

// Start begins the cron-driven cycle
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cron.Start()
	s.started = true

	s.logger.Info().Str("schedule", s.schedule).Msg("Analysis scheduler started")
	return nil
}

// Stop halts the cycle and waits for a running pass to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Analysis scheduler stopped")
}

func (s *Service) runOnce() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous analysis pass still running, skipping this trigger")
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	if err := s.runner(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled analysis pass failed")
	}
}
