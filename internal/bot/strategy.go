package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tusing/reddit-ffn-bot/internal/core"
	"github.com/tusing/reddit-ffn-bot/internal/sources/reddit"
)

const (
	StrategyNormal       = "normal"
	StrategyExperimental = "experimental"
)

// Strategy discovers the items of one pass and hands each to h.
// The first fetch or handler error aborts the rest of the pass.
type Strategy interface {
	Name() string
	Pass(ctx context.Context, h *Handlers, forums []string) error
}

// NewStrategy picks the pass strategy for a session. It is called once.
func NewStrategy(experimental bool, client reddit.Client, hotLimit, newLimit, commentLimit int) Strategy {
	if experimental {
		return &ExperimentalStrategy{Client: client, NewLimit: newLimit, CommentLimit: commentLimit}
	}
	return &NormalStrategy{Client: client, HotLimit: hotLimit}
}

// NormalStrategy walks the hot page of every subreddit and the full comment
// tree of every submission on it.
type NormalStrategy struct {
	Client   reddit.Client
	HotLimit int
}

func (s *NormalStrategy) Name() string {
	return StrategyNormal
}

func (s *NormalStrategy) Pass(ctx context.Context, h *Handlers, forums []string) error {
	for _, forum := range forums {
		if err := ctx.Err(); err != nil {
			return err
		}
		ctx := core.WithSubreddit(ctx, forum)
		logger := core.LoggerFromContext(ctx, h.logger)
		logger.Info("Handling subreddit")

		submissions, err := s.Client.HotSubmissions(ctx, forum, s.HotLimit)
		if err != nil {
			return fmt.Errorf("r/%s: %w", forum, err)
		}
		for _, submission := range submissions {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := h.HandleSubmission(ctx, submission); err != nil {
				return fmt.Errorf("r/%s: submission %s: %w", forum, submission.ID, err)
			}

			logger.Debug("Checking submission comments", slog.String("submission_id", submission.ID))
			tree, err := s.Client.CommentTree(ctx, submission.ID)
			if err != nil {
				return fmt.Errorf("r/%s: %w", forum, err)
			}
			for _, comment := range reddit.Flatten(tree) {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := h.HandleComment(ctx, comment); err != nil {
					return fmt.Errorf("r/%s: comment %s: %w", forum, comment.ID, err)
				}
			}
		}
	}
	return nil
}

// ExperimentalStrategy reads the newest submissions and comments of a single
// multireddit. It issues far fewer requests but misses comments on older
// submissions.
type ExperimentalStrategy struct {
	Client       reddit.Client
	NewLimit     int
	CommentLimit int
}

func (s *ExperimentalStrategy) Name() string {
	return StrategyExperimental
}

func (s *ExperimentalStrategy) Pass(ctx context.Context, h *Handlers, forums []string) error {
	if len(forums) == 0 {
		return nil
	}
	multi := strings.Join(forums, "+")
	ctx = core.WithSubreddit(ctx, multi)
	logger := core.LoggerFromContext(ctx, h.logger)

	logger.Info("Parsing new submissions")
	submissions, err := s.Client.NewSubmissions(ctx, multi, s.NewLimit)
	if err != nil {
		return fmt.Errorf("r/%s: %w", multi, err)
	}
	for _, submission := range submissions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.HandleSubmission(ctx, submission); err != nil {
			return fmt.Errorf("r/%s: submission %s: %w", multi, submission.ID, err)
		}
	}

	logger.Info("Parsing new comments")
	comments, err := s.Client.NewComments(ctx, multi, s.CommentLimit)
	if err != nil {
		return fmt.Errorf("r/%s: %w", multi, err)
	}
	for _, comment := range comments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.HandleComment(ctx, comment); err != nil {
			return fmt.Errorf("r/%s: comment %s: %w", multi, comment.ID, err)
		}
	}
	return nil
}
