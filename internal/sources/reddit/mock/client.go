package mock

import (
	"context"
	"sync"

	"github.com/tusing/reddit-ffn-bot/internal/sources/reddit"
)

// Reply records one call to Client.Reply.
type Reply struct {
	ParentFullID string
	Text         string
}

// Client is an in-memory reddit.Client for tests. Hot, New and Comments are
// keyed by the subreddit string passed in (a joined multireddit for the
// experimental strategy); Trees by submission id.
type Client struct {
	mu sync.Mutex

	Username string
	LoginErr error

	Hot      map[string][]reddit.Submission
	New      map[string][]reddit.Submission
	Comments map[string][]reddit.Comment
	Trees    map[string][]*reddit.Comment

	FetchErr map[string]error
	ReplyErr error

	Replies []Reply
	Fetches []string
}

func (c *Client) Login(ctx context.Context) (string, error) {
	_ = ctx
	if c.LoginErr != nil {
		return "", c.LoginErr
	}
	return c.Username, nil
}

func (c *Client) HotSubmissions(ctx context.Context, subreddit string, limit int) ([]reddit.Submission, error) {
	_ = ctx
	if err := c.record("hot:" + subreddit); err != nil {
		return nil, err
	}
	return head(c.Hot[subreddit], limit), nil
}

func (c *Client) NewSubmissions(ctx context.Context, subreddit string, limit int) ([]reddit.Submission, error) {
	_ = ctx
	if err := c.record("new:" + subreddit); err != nil {
		return nil, err
	}
	return head(c.New[subreddit], limit), nil
}

func (c *Client) NewComments(ctx context.Context, subreddit string, limit int) ([]reddit.Comment, error) {
	_ = ctx
	if err := c.record("comments:" + subreddit); err != nil {
		return nil, err
	}
	return head(c.Comments[subreddit], limit), nil
}

func (c *Client) CommentTree(ctx context.Context, submissionID string) ([]*reddit.Comment, error) {
	_ = ctx
	if err := c.record("tree:" + submissionID); err != nil {
		return nil, err
	}
	return c.Trees[submissionID], nil
}

func (c *Client) Reply(ctx context.Context, parentFullID, text string) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReplyErr != nil {
		return c.ReplyErr
	}
	c.Replies = append(c.Replies, Reply{ParentFullID: parentFullID, Text: text})
	return nil
}

// record logs a fetch and returns the error configured for key, if any.
func (c *Client) record(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Fetches = append(c.Fetches, key)
	if c.FetchErr != nil {
		return c.FetchErr[key]
	}
	return nil
}

func head[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
