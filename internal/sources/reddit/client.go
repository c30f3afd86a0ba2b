package reddit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tusing/reddit-ffn-bot/internal/retry"
	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"
)

// ErrNoCredentials is returned by Login when the client was built without a
// full set of OAuth credentials.
var ErrNoCredentials = errors.New("reddit credentials are not configured")

type Options struct {
	Timeout       time.Duration
	UserAgent     string
	ClientID      string
	ClientSecret  string
	Username      string
	Password      string
	FetchAttempts int
	// ListingURL is the base of the public JSON listings used for the
	// comment stream.
	ListingURL string
	// ExpandMore loads "more comments" stubs when walking a comment tree.
	ExpandMore bool
}

// APIClient implements Client on top of go-reddit.
type APIClient struct {
	client        *goreddit.Client
	listing       *listingReader
	authenticated bool
	fetchAttempts int
	expandMore    bool
	logger        *slog.Logger
}

func NewClient(logger *slog.Logger, opts Options) (*APIClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "ffnbot/0.6"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	var (
		client        *goreddit.Client
		err           error
		authenticated bool
	)
	if opts.ClientID != "" && opts.ClientSecret != "" && opts.Username != "" && opts.Password != "" {
		logger.Info("Using authenticated Reddit client", slog.String("username", opts.Username))
		client, err = goreddit.NewClient(goreddit.Credentials{
			ID:       opts.ClientID,
			Secret:   opts.ClientSecret,
			Username: opts.Username,
			Password: opts.Password,
		}, goreddit.WithHTTPClient(httpClient), goreddit.WithUserAgent(userAgent))
		authenticated = true
	} else {
		logger.Info("Using readonly Reddit client")
		client, err = goreddit.NewReadonlyClient(goreddit.WithHTTPClient(httpClient), goreddit.WithUserAgent(userAgent))
	}
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}

	return &APIClient{
		client:        client,
		listing:       newListingReader(httpClient, opts.ListingURL, userAgent),
		authenticated: authenticated,
		fetchAttempts: opts.FetchAttempts,
		expandMore:    opts.ExpandMore,
		logger:        logger,
	}, nil
}

func (c *APIClient) Login(ctx context.Context) (string, error) {
	if !c.authenticated {
		return "", ErrNoCredentials
	}
	user, _, err := c.client.Account.Info(ctx)
	if err != nil {
		return "", fmt.Errorf("reddit login: %w", err)
	}
	return user.Name, nil
}

func (c *APIClient) HotSubmissions(ctx context.Context, subreddit string, limit int) ([]Submission, error) {
	return c.fetchPosts(ctx, subreddit, limit, c.client.Subreddit.HotPosts)
}

func (c *APIClient) NewSubmissions(ctx context.Context, subreddit string, limit int) ([]Submission, error) {
	return c.fetchPosts(ctx, subreddit, limit, c.client.Subreddit.NewPosts)
}

// Requests run detached from cancellation; a stop only takes effect between
// requests. The HTTP client timeout still bounds each one.
type listPostsFunc func(ctx context.Context, subreddit string, opts *goreddit.ListOptions) ([]*goreddit.Post, *goreddit.Response, error)

func (c *APIClient) fetchPosts(ctx context.Context, subreddit string, limit int, list listPostsFunc) ([]Submission, error) {
	ctx = context.WithoutCancel(ctx)
	var posts []*goreddit.Post
	err := c.withRetry(ctx, func() (*goreddit.Response, error) {
		var (
			resp *goreddit.Response
			err  error
		)
		posts, resp, err = list(ctx, subreddit, &goreddit.ListOptions{Limit: limit})
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch posts from r/%s: %w", subreddit, err)
	}

	out := make([]Submission, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		out = append(out, Submission{
			ID:        post.ID,
			FullID:    post.FullID,
			Subreddit: post.SubredditName,
			Title:     post.Title,
			Body:      post.Body,
			URL:       post.URL,
			Author:    post.Author,
			IsSelf:    post.IsSelfPost,
		})
	}
	return out, nil
}

func (c *APIClient) NewComments(ctx context.Context, subreddit string, limit int) ([]Comment, error) {
	ctx = context.WithoutCancel(ctx)
	var comments []Comment
	err := c.withRetry(ctx, func() (*goreddit.Response, error) {
		var err error
		comments, err = c.listing.comments(ctx, subreddit, limit)
		var statusErr *listingStatusError
		if errors.As(err, &statusErr) {
			return &goreddit.Response{Response: &http.Response{StatusCode: statusErr.status}}, err
		}
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch comments from r/%s: %w", subreddit, err)
	}
	return comments, nil
}

func (c *APIClient) CommentTree(ctx context.Context, submissionID string) ([]*Comment, error) {
	ctx = context.WithoutCancel(ctx)
	var pc *goreddit.PostAndComments
	err := c.withRetry(ctx, func() (*goreddit.Response, error) {
		var (
			resp *goreddit.Response
			err  error
		)
		pc, resp, err = c.client.Post.Get(ctx, submissionID)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch comments of %s: %w", submissionID, err)
	}
	if pc == nil {
		return nil, nil
	}
	if c.expandMore && pc.HasMore() {
		if _, err := c.client.Post.LoadMoreComments(ctx, pc); err != nil {
			c.logger.Warn("Failed to load more comments", slog.String("submission_id", submissionID), slog.String("error", err.Error()))
		}
	}
	return convertComments(pc.Comments), nil
}

func (c *APIClient) Reply(ctx context.Context, parentFullID, text string) error {
	if !c.authenticated {
		return ErrNoCredentials
	}
	// A stop never interrupts a reply in flight.
	if _, _, err := c.client.Comment.Submit(context.WithoutCancel(ctx), parentFullID, text); err != nil {
		return fmt.Errorf("reply to %s: %w", parentFullID, err)
	}
	return nil
}

func (c *APIClient) withRetry(ctx context.Context, fn func() (*goreddit.Response, error)) error {
	return retry.Do(ctx, retry.Config{
		Attempts:  c.fetchAttempts,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Retryable: isTransient,
	}, func() error {
		resp, err := fn()
		if err != nil {
			return &fetchError{resp: resp, err: err}
		}
		return nil
	})
}

type fetchError struct {
	resp *goreddit.Response
	err  error
}

func (e *fetchError) Error() string { return e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

// isTransient treats server errors and transport failures as retryable.
func isTransient(err error) bool {
	var fe *fetchError
	if !errors.As(err, &fe) {
		return false
	}
	if fe.resp == nil || fe.resp.Response == nil {
		return true
	}
	return fe.resp.StatusCode >= http.StatusInternalServerError
}

func convertComments(in []*goreddit.Comment) []*Comment {
	if len(in) == 0 {
		return nil
	}
	out := make([]*Comment, 0, len(in))
	for _, c := range in {
		if c == nil {
			continue
		}
		out = append(out, &Comment{
			ID:        c.ID,
			FullID:    c.FullID,
			ParentID:  c.ParentID,
			PostID:    strings.TrimPrefix(c.PostID, "t3_"),
			Subreddit: c.SubredditName,
			Body:      c.Body,
			Author:    c.Author,
			Replies:   convertComments(c.Replies.Comments),
		})
	}
	return out
}
