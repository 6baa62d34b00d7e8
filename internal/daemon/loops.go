package daemon

import (
	"context"
	"log/slog"
	"time"

	"proctrack/internal/config"
	"proctrack/internal/logging"
	"proctrack/internal/process"
)

// Every loop re-reads its interval from the store at the start of each cycle
// so option changes apply from the next cycle on.

func (d *Daemon) pollLiveness(ctx context.Context) {
	defer d.wg.Done()
	logger := logging.NewComponentLogger(d.logger, "liveness")

	for {
		d.scanOnce(ctx, logger)
		if !sleepContext(ctx, d.interval(d.store.Config().PollInterval)) {
			return
		}
	}
}

func (d *Daemon) scanOnce(ctx context.Context, logger *slog.Logger) {
	names, err := d.scanner.RunningProcesses(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.WarnWithContext(logger, "process scan failed; liveness unchanged", "liveness_scan_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the process table is readable"),
			logging.String(logging.FieldImpact, "running flags and last-seen dates are stale until the next scan"),
		)
		return
	}

	now := d.now()
	var active int
	_ = d.store.WriteRegistry(func(r *process.Registry) error {
		active = r.RefreshLiveness(names, now)
		return nil
	})
	logger.Debug("liveness refreshed",
		logging.Int("visible", len(names)),
		logging.Int("active", active),
	)
}

func (d *Daemon) accrueDurations(ctx context.Context) {
	defer d.wg.Done()
	logger := logging.NewComponentLogger(d.logger, "accrual")

	for {
		seconds := d.store.Config().DurationUpdateInterval
		if !sleepContext(ctx, d.interval(seconds)) {
			return
		}
		var updated int
		_ = d.store.WriteRegistry(func(r *process.Registry) error {
			updated = r.Accrue(seconds)
			return nil
		})
		if updated > 0 {
			logger.Debug("durations accrued",
				logging.Uint64("seconds", seconds),
				logging.Int("processes", updated),
			)
		}
	}
}

func (d *Daemon) autosave(ctx context.Context) {
	defer d.wg.Done()
	logger := logging.NewComponentLogger(d.logger, "autosave")

	for {
		var wait uint64
		d.store.ReadConfig(func(c config.Intervals) { wait = c.AutosaveInterval })
		if !sleepContext(ctx, d.interval(wait)) {
			return
		}
		if err := d.writer.Save(ctx, "autosave"); err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.WarnWithContext(logger, "autosave failed", "autosave_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the data directory"),
				logging.String(logging.FieldImpact, "changes since the last successful save are only in memory"),
			)
			continue
		}
		logger.Debug("autosave complete")
	}
}

func sleepContext(ctx context.Context, wait time.Duration) bool {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
