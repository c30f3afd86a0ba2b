package core

import (
	"context"
	"log/slog"
)

type passIDKey struct{}
type subredditKey struct{}

// WithPassID tags the context with the id of the running pass and extends
// the context logger with a pass_id attribute.
func WithPassID(ctx context.Context, passID string) context.Context {
	if ctx == nil || passID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, passIDKey{}, passID)
	return WithLogger(ctx, LoggerFromContext(ctx, nil).With(slog.String("pass_id", passID)))
}

// WithSubreddit tags the context with the subreddit being scanned.
func WithSubreddit(ctx context.Context, subreddit string) context.Context {
	if ctx == nil || subreddit == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, subredditKey{}, subreddit)
	return WithLogger(ctx, LoggerFromContext(ctx, nil).With(slog.String("subreddit", subreddit)))
}

func PassIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(passIDKey{}).(string); ok {
		return v
	}
	return ""
}

func SubredditFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(subredditKey{}).(string); ok {
		return v
	}
	return ""
}
