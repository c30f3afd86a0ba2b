package runner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tusing/reddit-ffn-bot/internal/observability/metrics"
)

// Status is a point-in-time summary of the polling loop. It is safe to take
// from any goroutine.
type Status struct {
	CheckedItems  int           `json:"checked_items"`
	Passes        int64         `json:"passes"`
	FailedPasses  int64         `json:"failed_passes"`
	RepliesPosted int64         `json:"replies_posted"`
	LastFailure   string        `json:"last_failure,omitempty"`
	Uptime        time.Duration `json:"uptime_ns"`
}

func (r *Runner) Status() Status {
	status := Status{
		CheckedItems:  r.store.Len(),
		Passes:        r.passes.Load(),
		FailedPasses:  r.failures.Load(),
		RepliesPosted: int64(metrics.CounterValue(metrics.RepliesPosted)),
		Uptime:        time.Since(r.started).Round(time.Second),
	}
	if last, ok := r.lastFailure.Load().(string); ok {
		status.LastFailure = last
	}
	return status
}

func validateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid status schedule %q: %w", schedule, err)
	}
	return nil
}

// startStatus schedules the periodic status log and returns a function that
// stops it and waits for a running report to finish.
func (r *Runner) startStatus() func() {
	if r.config.StatusSchedule == "" {
		return func() {}
	}
	c := cron.New()
	if _, err := c.AddFunc(r.config.StatusSchedule, r.reportStatus); err != nil {
		r.logger.Warn("Status reporter disabled", slog.String("error", err.Error()))
		return func() {}
	}
	c.Start()
	return func() {
		<-c.Stop().Done()
	}
}

func (r *Runner) reportStatus() {
	status := r.Status()
	attrs := []any{
		slog.Int("checked_items", status.CheckedItems),
		slog.Int64("passes", status.Passes),
		slog.Int64("failed_passes", status.FailedPasses),
		slog.Int64("replies_posted", status.RepliesPosted),
		slog.Duration("uptime", status.Uptime),
	}
	if status.LastFailure != "" {
		attrs = append(attrs, slog.String("last_failure", status.LastFailure))
	}
	r.logger.Info("Status", attrs...)
}
