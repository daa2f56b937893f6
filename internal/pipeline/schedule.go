package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Schedule repeats Run on a standard cron spec ("0 6 * * *", "@daily",
// "@every 6h") until ctx is cancelled. A tick that fires while a run is still
// in progress is skipped. Schedule blocks until the in-flight run finishes.
func (p *Pipeline) Schedule(ctx context.Context, spec string) error {
	logger := cronLogger{p.logger}
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)

	if _, err := c.AddFunc(spec, func() {
		if _, err := p.Run(ctx); err != nil {
			p.logger.Error("scheduled run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	p.logger.Info("scheduler started", "schedule", spec)

	<-ctx.Done()
	p.logger.Info("scheduler stopping", "reason", ctx.Err())
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's logr-style output to slog. Info is demoted to
// debug since cron reports every wake-up.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
