package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/tusing/reddit-ffn-bot/internal/core"
	"github.com/tusing/reddit-ffn-bot/internal/observability/metrics"
	"github.com/tusing/reddit-ffn-bot/internal/reply"
)

// StopError ends Run after a final flush. Code is the process exit code.
type StopError struct {
	Code int
}

func (e *StopError) Error() string {
	if e.Code == 0 {
		return "stopped"
	}
	return fmt.Sprintf("stopped with code %d", e.Code)
}

func (e *StopError) Is(target error) bool {
	t, ok := target.(*StopError)
	return ok && t.Code == e.Code
}

// ErrStopped is returned by Run after a deliberate stop.
var ErrStopped error = &StopError{Code: 0}

// PanicError is a panic recovered from a pass. It is retried like any other
// pass failure.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("pass panicked: %v", e.Value)
}

// ExitCode maps the result of Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var stop *StopError
	if errors.As(err, &stop) {
		return stop.Code
	}
	return 1
}

// Passer runs one polling pass.
type Passer interface {
	Pass(ctx context.Context) error
}

// Flusher persists the dedup store.
type Flusher interface {
	Save(ctx context.Context) error
	Len() int
}

type Config struct {
	ErrorDelay time.Duration
	// StatusSchedule is a cron spec for the periodic status log. Empty
	// disables it.
	StatusSchedule string
	Sleep          reply.SleepFunc
}

// Runner supervises the polling loop: every pass is followed by a flush,
// failures are logged and retried, and a stop ends the loop cleanly.
type Runner struct {
	passer Passer
	store  Flusher
	config Config
	logger *slog.Logger

	started     time.Time
	passes      atomic.Int64
	failures    atomic.Int64
	lastFailure atomic.Value
}

func New(passer Passer, store Flusher, config Config, logger *slog.Logger) (*Runner, error) {
	if passer == nil {
		return nil, fmt.Errorf("passer is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.Sleep == nil {
		config.Sleep = reply.Sleep
	}
	if config.StatusSchedule != "" {
		if err := validateSchedule(config.StatusSchedule); err != nil {
			return nil, err
		}
	}
	return &Runner{passer: passer, store: store, config: config, logger: logger, started: time.Now()}, nil
}

// Run loops until ctx is done or a pass returns a StopError. It returns
// ErrStopped on a deliberate stop and otherwise the StopError that ended it.
func (r *Runner) Run(ctx context.Context) (err error) {
	ctx = core.WithLogger(ctx, r.logger)

	stopStatus := r.startStatus()
	defer stopStatus()
	defer r.flush(ctx)

	r.logger.Info("Starting polling loop")
	for {
		if ctx.Err() != nil {
			r.logger.Info("Stop requested")
			return ErrStopped
		}

		passErr := r.safePass(ctx)
		r.passes.Add(1)
		r.flush(ctx)
		if passErr == nil {
			continue
		}

		var stop *StopError
		if errors.As(passErr, &stop) {
			r.logger.Info("Pass requested stop", slog.Int("code", stop.Code))
			return stop
		}
		if ctx.Err() != nil && errors.Is(passErr, context.Canceled) {
			r.logger.Info("Stop requested")
			return ErrStopped
		}

		r.failures.Add(1)
		r.lastFailure.Store(passErr.Error())
		attrs := []any{slog.String("error", passErr.Error())}
		var panicErr *PanicError
		if errors.As(passErr, &panicErr) {
			attrs = append(attrs, slog.String("stack", string(panicErr.Stack)))
		}
		r.logger.Error("Pass failed, retrying", attrs...)

		if err := r.config.Sleep(ctx, r.config.ErrorDelay); err != nil {
			r.logger.Info("Stop requested")
			return ErrStopped
		}
	}
}

func (r *Runner) safePass(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &PanicError{Value: recovered, Stack: debug.Stack()}
		}
	}()
	return r.passer.Pass(ctx)
}

// flush never fails the loop; a failed save is retried after the next pass.
func (r *Runner) flush(ctx context.Context) {
	if err := r.store.Save(context.WithoutCancel(ctx)); err != nil {
		metrics.StoreSaveFailures.Inc()
		r.logger.Error("Failed to save checked items", slog.String("error", err.Error()))
	}
	metrics.StoreSize.Set(float64(r.store.Len()))
}
