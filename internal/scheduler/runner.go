// Package scheduler runs periodic maintenance jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is one run of a periodic job. Errors are logged; the job keeps its
// schedule.
type JobFunc func(ctx context.Context) error

// runTimeout bounds a single run so a stuck dependency cannot pile up runs.
const runTimeout = time.Minute

type Runner struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRunner(logger *slog.Logger) *Runner {
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers fn under name. spec accepts standard five-field expressions
// and descriptors such as "@every 10m".
func (r *Runner) Add(name, spec string, fn JobFunc) error {
	_, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(r.ctx, runTimeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			r.logger.Error("job failed", "job", name, "error", err)
			return
		}
		r.logger.Debug("job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	r.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start runs the scheduled jobs until ctx is cancelled, then waits for
// running jobs to finish.
func (r *Runner) Start(ctx context.Context) {
	r.cron.Start()
	r.logger.Info("scheduler started", "jobs", len(r.cron.Entries()))

	<-ctx.Done()
	r.cancel()
	<-r.cron.Stop().Done()
	r.logger.Info("scheduler shut down")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
