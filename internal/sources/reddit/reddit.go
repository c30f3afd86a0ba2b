package reddit

import "context"

// Submission is a reddit post as seen by the bot.
type Submission struct {
	ID        string
	FullID    string
	Subreddit string
	Title     string
	Body      string
	URL       string
	Author    string
	IsSelf    bool
}

// Comment is a reddit comment. Replies is only populated for comments that
// came from a comment tree.
type Comment struct {
	ID        string
	FullID    string
	ParentID  string
	PostID    string
	Subreddit string
	Body      string
	Author    string
	Replies   []*Comment
}

// Client is the subset of the reddit API the bot needs.
type Client interface {
	// Login verifies the configured credentials and returns the account name.
	Login(ctx context.Context) (string, error)
	HotSubmissions(ctx context.Context, subreddit string, limit int) ([]Submission, error)
	NewSubmissions(ctx context.Context, subreddit string, limit int) ([]Submission, error)
	NewComments(ctx context.Context, subreddit string, limit int) ([]Comment, error)
	// CommentTree returns the top-level comments of a submission with their
	// replies nested below them.
	CommentTree(ctx context.Context, submissionID string) ([]*Comment, error)
	// Reply posts text as a reply to the thing with the given fullname
	// (t3_ for submissions, t1_ for comments).
	Reply(ctx context.Context, parentFullID, text string) error
}

// Flatten walks a comment tree depth-first, parents before children, and
// returns every comment exactly once.
func Flatten(tree []*Comment) []Comment {
	var out []Comment
	seen := map[string]bool{}
	var walk func([]*Comment)
	walk = func(level []*Comment) {
		for _, c := range level {
			if c == nil {
				continue
			}
			if c.ID != "" {
				if seen[c.ID] {
					continue
				}
				seen[c.ID] = true
			}
			flat := *c
			flat.Replies = nil
			out = append(out, flat)
			walk(c.Replies)
		}
	}
	walk(tree)
	return out
}
