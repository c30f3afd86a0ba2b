package reply

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tusing/reddit-ffn-bot/internal/commentparser"
	"github.com/tusing/reddit-ffn-bot/internal/core"
	"github.com/tusing/reddit-ffn-bot/internal/observability/metrics"
)

// DefaultFooter is appended to every posted reply.
const DefaultFooter = "\n\nSupporting fanfiction.net (*linkffn*), AO3 (buggy) (*linkao3*), HPFanficArchive (*linkffa*), FictionPress (*linkfp*), AdultFanFiction (linkaff) (story ID only)" +
	"\n\nRead usage tips and tricks  [**here**](https://github.com/tusing/reddit-ffn-bot/blob/master/README.md).\n\n" +
	"^(**New Feature:** Parse multiple fics in a single call with;semicolons;like;this!)\n\n" +
	"^(**New Feature:** Type 'ffnbot!directlinks' in any comment to have the bot **automatically parse fanfiction links** and make a reply, without even calling the bot! Added AdultFanFiction support!)" +
	"\n\n^^**Update** ^^**7/11/2015:** ^^More ^^formatting ^^bugs ^^fixed. ^^Feature ^^added!\n\n^^^^^^^^^^^^^^^^^ffnbot!ignore"

const DefaultMinLength = 10

// Formulator produces candidate reply text. Implementations must be pure.
type Formulator interface {
	FormulateReply(body string, markers commentparser.Markers, additions []string) string
}

// PostFunc posts text as a reply to one specific item.
type PostFunc func(ctx context.Context, text string) error

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Outcome string

const (
	OutcomeEmpty    Outcome = "empty"
	OutcomeTooShort Outcome = "too_short"
	OutcomeDryRun   Outcome = "dry_run"
	OutcomePosted   Outcome = "posted"
)

type Config struct {
	Footer    string
	MinLength int
	Cooldown  time.Duration
	DryRun    bool
}

type Replier struct {
	formulator Formulator
	config     Config
	sleep      SleepFunc
	logger     *slog.Logger
}

func New(formulator Formulator, config Config, sleep SleepFunc, logger *slog.Logger) (*Replier, error) {
	if formulator == nil {
		return nil, fmt.Errorf("reply formulator is required")
	}
	if config.MinLength < 0 {
		return nil, fmt.Errorf("min reply length must be >= 0")
	}
	if sleep == nil {
		sleep = Sleep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Replier{formulator: formulator, config: config, sleep: sleep, logger: logger}, nil
}

// MakeReply formulates a reply for body and posts it through post when it is
// long enough. Post errors are returned; the caller decides what to mark.
func (r *Replier) MakeReply(ctx context.Context, body, id string, post PostFunc, markers commentparser.Markers, additions []string) (Outcome, error) {
	logger := core.LoggerFromContext(ctx, r.logger)

	text := r.formulator.FormulateReply(body, markers, additions)
	if text == "" {
		logger.Info("Empty reply")
		metrics.RepliesSkipped.WithLabelValues(string(OutcomeEmpty)).Inc()
		return OutcomeEmpty, nil
	}
	if len(text) <= r.config.MinLength {
		logger.Info("No reply conditions met", slog.Int("length", len(text)))
		metrics.RepliesSkipped.WithLabelValues(string(OutcomeTooShort)).Inc()
		return OutcomeTooShort, nil
	}

	outgoing := text + r.config.Footer
	logger.Info("Outgoing reply", slog.String("reply", outgoing), slog.Bool("dry_run", r.config.DryRun))
	if r.config.DryRun {
		metrics.RepliesSkipped.WithLabelValues(string(OutcomeDryRun)).Inc()
		return OutcomeDryRun, nil
	}
	if post == nil {
		return "", fmt.Errorf("no reply target for %s", id)
	}
	if err := post(ctx, outgoing); err != nil {
		metrics.ReplyFailures.Inc()
		return "", fmt.Errorf("post reply to %s: %w", id, err)
	}
	metrics.RepliesPosted.Inc()

	if err := r.sleep(ctx, r.config.Cooldown); err != nil {
		return OutcomePosted, err
	}
	logger.Debug("Continuing to parse submissions")
	return OutcomePosted, nil
}

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
