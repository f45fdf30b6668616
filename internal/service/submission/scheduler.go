package submission

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"docs-evaluator/internal/domain"
)

// Scheduler runs syncs on a cron schedule. A tick that fires while a
// previous sync is still running is skipped.
type Scheduler struct {
	cron     *cron.Cron
	orch     *Orchestrator
	schedule string
	logger   *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// NewScheduler creates a scheduler for the given standard five-field cron
// expression (descriptors such as "@every 15m" are accepted too).
func NewScheduler(orch *Orchestrator, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		orch:     orch,
		schedule: schedule,
		logger:   logger.With("component", "sync-scheduler"),
	}
}

// Start registers the schedule and starts the cron loop. Scheduled runs
// are canceled when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)
	if _, err := s.cron.AddFunc(s.schedule, s.tick); err != nil {
		s.cancel()
		return domain.ErrValidation("invalid sync schedule %q: %v", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("sync scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts the cron loop and waits for a running sync to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("sync scheduler stopped")
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous scheduled sync still running, skipping tick")
		return
	}
	s.running = true
	ctx := s.ctx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	files, err := s.orch.Run(ctx, domain.SyncTriggerScheduled)
	if err != nil {
		s.logger.Warn("scheduled sync failed", "error", err)
		return
	}
	s.logger.Info("scheduled sync completed", "routed", len(files))
}
