package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
)

const defaultJobTimeout = 30 * time.Second

// PrimaryResetter returns the upstream client to its primary credential.
type PrimaryResetter interface {
	ResetPrimary(ctx context.Context) error
}

// Scheduler runs periodic maintenance jobs on a cron clock.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logging.Logger
	timeout time.Duration
}

func NewScheduler(logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("jobs")

	adapter := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger:  logger,
		timeout: defaultJobTimeout,
	}
}

// SchedulePrimaryReset registers resetter on a cron schedule such as "@every 1h" or "0 0 * * *".
func (s *Scheduler) SchedulePrimaryReset(spec string, resetter PrimaryResetter) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return fmt.Errorf("primary reset schedule is required")
	}
	if resetter == nil {
		return fmt.Errorf("primary resetter is required")
	}

	id, err := s.cron.AddFunc(spec, s.primaryResetJob(resetter))
	if err != nil {
		return fmt.Errorf("schedule primary reset %q: %w", spec, err)
	}
	s.logger.Info("primary reset scheduled", "schedule", spec, "entry_id", int(id))
	return nil
}

func (s *Scheduler) primaryResetJob(resetter PrimaryResetter) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := resetter.ResetPrimary(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled primary reset failed", "error", err)
			return
		}
		s.logger.InfoContext(ctx, "scheduled primary reset completed")
	}
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the clock and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
