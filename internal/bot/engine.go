package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tusing/reddit-ffn-bot/internal/core"
	"github.com/tusing/reddit-ffn-bot/internal/observability/metrics"
	"github.com/tusing/reddit-ffn-bot/internal/observability/otelx"
	"github.com/tusing/reddit-ffn-bot/internal/reply"
)

// Engine runs single passes of the configured strategy over the session's
// subreddits. It never persists the store; that is the runner's job.
type Engine struct {
	strategy  Strategy
	handlers  *Handlers
	forums    []string
	passDelay time.Duration
	sleep     reply.SleepFunc
	logger    *slog.Logger
}

// Pass scans every subreddit once and then waits for the pass delay. A
// failed pass returns at once; the runner applies its error delay instead.
func (e *Engine) Pass(ctx context.Context) error {
	passID := uuid.NewString()
	ctx = core.WithLogger(ctx, core.LoggerFromContext(ctx, e.logger))
	ctx = core.WithPassID(ctx, passID)
	logger := core.LoggerFromContext(ctx, e.logger)

	ctx, span := otelx.Tracer().Start(ctx, "bot.Pass", trace.WithAttributes(
		attribute.String("pass.id", passID),
		attribute.String("pass.strategy", e.strategy.Name()),
		attribute.Int("pass.subreddits", len(e.forums)),
	))
	started := time.Now()
	logger.Debug("Starting pass", slog.String("strategy", e.strategy.Name()))

	err := e.strategy.Pass(ctx, e.handlers, e.forums)
	metrics.PassDuration.WithLabelValues(e.strategy.Name()).Observe(time.Since(started).Seconds())

	result := "ok"
	switch {
	case err == nil:
		logger.Debug("Pass complete", slog.Duration("took", time.Since(started)))
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		result = "stopped"
		logger.Info("Pass interrupted")
	default:
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "pass failed")
		logger.Error("Pass failed", slog.String("error", err.Error()))
	}
	metrics.Passes.WithLabelValues(e.strategy.Name(), result).Inc()
	span.End()

	if err == nil {
		err = e.sleep(ctx, e.passDelay)
	}
	if err != nil {
		return fmt.Errorf("pass %s: %w", passID, err)
	}
	return nil
}

func (e *Engine) Strategy() Strategy {
	return e.strategy
}
