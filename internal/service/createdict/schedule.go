package createdict

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"sens-scan/internal/domain"
)

// ParseSchedule validates a standard five-field cron spec.
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, domain.ErrValidation("invalid schedule %q: %v", spec, err)
	}
	return sched, nil
}

// RunScheduled runs the service on the cron schedule spec until ctx is
// canceled. A tick that arrives while a run is still in progress is
// skipped. Run failures are logged and do not stop the schedule.
func (s *Service) RunScheduled(ctx context.Context, spec string) error {
	sched, err := ParseSchedule(spec)
	if err != nil {
		return err
	}

	clog := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)))
	c.Schedule(sched, cron.FuncJob(func() {
		res := s.Run(ctx)
		if !res.OK() {
			s.logger.Warn("scheduled run failed", "run_id", res.RunID)
		}
	}))

	c.Start()
	s.logger.Info("scheduler started", "schedule", spec)

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
