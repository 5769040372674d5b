// Package census periodically reports how many identities the event store
// holds. It only reads the store.
package census

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/onnwee/seenbot/seen"
	"github.com/onnwee/seenbot/telemetry"
)

// Disabled turns the job off when used as its schedule.
const Disabled = "off"

// Job counts a store on a cron schedule and publishes the result as the
// seen_identities_stored gauge.
type Job struct {
	Store seen.Counter
	// Schedule is a standard cron spec or descriptor such as "@every 5m".
	Schedule string
}

// Enabled reports whether the job has anything to run.
func (j *Job) Enabled() bool {
	return j.Schedule != "" && j.Schedule != Disabled
}

// RunOnce performs a single census.
func (j *Job) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.Store.Count(ctx)
	if err != nil {
		return 0, err
	}
	telemetry.SetStored(n)
	slog.Debug("census complete", slog.Int64("identities", n), slog.String("component", "census"))
	return n, nil
}

// Start runs a census immediately, then on the schedule until ctx is
// cancelled. It returns once any in-flight run has finished.
func (j *Job) Start(ctx context.Context) error {
	if !j.Enabled() {
		slog.Info("census job disabled", slog.String("component", "census"))
		return nil
	}
	sched, err := cron.ParseStandard(j.Schedule)
	if err != nil {
		return fmt.Errorf("invalid census schedule %q: %w", j.Schedule, err)
	}

	slog.Info("census job starting", slog.String("schedule", j.Schedule), slog.String("component", "census"))

	run := func() {
		if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("census failed", slog.Any("err", err), slog.String("component", "census"))
		}
	}
	run()

	c := cron.New(cron.WithLocation(time.UTC))
	c.Schedule(sched, cron.FuncJob(run))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("census job stopped", slog.String("component", "census"))
	return nil
}
