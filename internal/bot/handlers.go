package bot

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tusing/reddit-ffn-bot/internal/commentparser"
	"github.com/tusing/reddit-ffn-bot/internal/core"
	"github.com/tusing/reddit-ffn-bot/internal/dedupe"
	"github.com/tusing/reddit-ffn-bot/internal/observability/metrics"
	"github.com/tusing/reddit-ffn-bot/internal/observability/otelx"
	"github.com/tusing/reddit-ffn-bot/internal/reply"
	"github.com/tusing/reddit-ffn-bot/internal/rules"
	"github.com/tusing/reddit-ffn-bot/internal/sources/reddit"
)

const (
	kindSubmission = "submission"
	kindComment    = "comment"
)

// Parser extracts directives and link requests from item text.
type Parser interface {
	ParseMarkers(body string) commentparser.Markers
	DirectLinks(rawURL string) []string
}

// Handlers decide, per item, whether to hand it to the Replier, and record
// every handled item in the store.
type Handlers struct {
	client     reddit.Client
	store      dedupe.Store
	replier    *reply.Replier
	parser     Parser
	filter     *rules.Filter
	markFailed bool
	logger     *slog.Logger
}

func (h *Handlers) HandleSubmission(ctx context.Context, s reddit.Submission) (err error) {
	id := dedupe.SubmissionKey(s.ID)
	if h.store.Contains(id) {
		return nil
	}

	ctx, span := otelx.Tracer().Start(ctx, "bot.HandleSubmission", trace.WithAttributes(
		attribute.String("item.id", id),
		attribute.String("subreddit", s.Subreddit),
	))
	defer span.End()
	logger := core.LoggerFromContext(ctx, h.logger).With(slog.String("item_id", id))
	ctx = core.WithLogger(ctx, logger)

	logger.Info("Found new submission")
	metrics.ItemsHandled.WithLabelValues(kindSubmission).Inc()
	var outcome reply.Outcome
	defer h.markChecked(span, logger, id, &outcome, &err)

	if h.skip(logger, rules.Item{
		Kind:      kindSubmission,
		ID:        s.ID,
		Subreddit: s.Subreddit,
		Author:    s.Author,
		Title:     s.Title,
		URL:       s.URL,
		Body:      s.Body,
	}) {
		return nil
	}

	markers := h.parser.ParseMarkers(s.Body)
	if markers.Has(commentparser.MarkerIgnore) {
		logger.Info("Submission asked to be ignored")
		metrics.ItemsSkipped.WithLabelValues(commentparser.MarkerIgnore).Inc()
		return nil
	}

	var additions []string
	if markers.Has(commentparser.MarkerSubmissionLink) {
		additions = append(additions, h.parser.DirectLinks(s.URL)...)
	}

	outcome, err = h.replier.MakeReply(ctx, s.Body, id, h.postTo(fullname("t3_", s.ID, s.FullID)), markers, additions)
	return err
}

func (h *Handlers) HandleComment(ctx context.Context, c reddit.Comment) (err error) {
	id := c.ID
	if h.store.Contains(id) {
		return nil
	}

	ctx, span := otelx.Tracer().Start(ctx, "bot.HandleComment", trace.WithAttributes(
		attribute.String("item.id", id),
		attribute.String("subreddit", c.Subreddit),
	))
	defer span.End()
	logger := core.LoggerFromContext(ctx, h.logger).With(slog.String("item_id", id))
	ctx = core.WithLogger(ctx, logger)

	logger.Info("Found new comment")
	metrics.ItemsHandled.WithLabelValues(kindComment).Inc()
	var outcome reply.Outcome
	defer h.markChecked(span, logger, id, &outcome, &err)

	if h.skip(logger, rules.Item{
		Kind:      kindComment,
		ID:        c.ID,
		Subreddit: c.Subreddit,
		Author:    c.Author,
		Body:      c.Body,
	}) {
		return nil
	}

	markers := h.parser.ParseMarkers(c.Body)
	if markers.Has(commentparser.MarkerIgnore) {
		logger.Info("Comment asked to be ignored")
		metrics.ItemsSkipped.WithLabelValues(commentparser.MarkerIgnore).Inc()
		return nil
	}

	outcome, err = h.replier.MakeReply(ctx, c.Body, id, h.postTo(fullname("t1_", c.ID, c.FullID)), markers, nil)
	return err
}

// markChecked runs deferred on every exit path of a handler, including
// panics, which are re-raised after the store is updated. Failed attempts
// are only recorded when markFailed is set. An item whose reply was posted
// is always recorded, even if the cooldown after it was interrupted.
func (h *Handlers) markChecked(span trace.Span, logger *slog.Logger, id string, outcome *reply.Outcome, errp *error) {
	recovered := recover()
	failed := recovered != nil || (errp != nil && *errp != nil)
	posted := outcome != nil && *outcome == reply.OutcomePosted
	if failed {
		span.SetStatus(codes.Error, "handling failed")
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
		}
	}
	if !failed || h.markFailed || posted {
		h.store.Add(id)
		metrics.StoreSize.Set(float64(h.store.Len()))
	} else {
		logger.Warn("Leaving failed item unchecked for retry")
	}
	if recovered != nil {
		panic(recovered)
	}
}

func (h *Handlers) skip(logger *slog.Logger, item rules.Item) bool {
	skip, err := h.filter.Skip(item)
	if err != nil {
		logger.Warn("Skip rule failed, handling item anyway", slog.String("error", err.Error()))
		return false
	}
	if skip {
		logger.Info("Item matched skip rule", slog.String("rule", h.filter.String()))
		metrics.ItemsSkipped.WithLabelValues("rule").Inc()
	}
	return skip
}

func (h *Handlers) postTo(parent string) reply.PostFunc {
	return func(ctx context.Context, text string) error {
		return h.client.Reply(ctx, parent, text)
	}
}

func fullname(prefix, id, fullID string) string {
	if fullID != "" {
		return fullID
	}
	return fmt.Sprintf("%s%s", prefix, id)
}
