package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// listingReader reads public JSON listings that go-reddit does not expose,
// such as a subreddit's newest comments.
type listingReader struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func newListingReader(client *http.Client, baseURL, userAgent string) *listingReader {
	if client == nil {
		client = http.DefaultClient
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://www.reddit.com"
	}
	return &listingReader{client: client, baseURL: baseURL, userAgent: userAgent}
}

type listingStatusError struct {
	status int
	text   string
}

func (e *listingStatusError) Error() string {
	return fmt.Sprintf("reddit listing failed: %s", e.text)
}

func (r *listingReader) comments(ctx context.Context, subreddit string, limit int) ([]Comment, error) {
	if limit <= 0 {
		limit = 100
	}
	endpoint := fmt.Sprintf("%s/r/%s/comments.json", r.baseURL, url.PathEscape(subreddit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	query := req.URL.Query()
	query.Set("limit", strconv.Itoa(limit))
	query.Set("raw_json", "1")
	req.URL.RawQuery = query.Encode()
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &listingStatusError{status: resp.StatusCode, text: resp.Status}
	}

	var payload commentListing
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reddit comment listing: %w", err)
	}

	out := make([]Comment, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		d := child.Data
		fullID := d.Name
		if fullID == "" {
			fullID = "t1_" + d.ID
		}
		out = append(out, Comment{
			ID:        d.ID,
			FullID:    fullID,
			ParentID:  d.ParentID,
			PostID:    strings.TrimPrefix(d.LinkID, "t3_"),
			Subreddit: d.Subreddit,
			Body:      d.Body,
			Author:    d.Author,
		})
	}
	return out, nil
}

type commentListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				ID        string `json:"id"`
				Name      string `json:"name"`
				ParentID  string `json:"parent_id"`
				LinkID    string `json:"link_id"`
				Subreddit string `json:"subreddit"`
				Body      string `json:"body"`
				Author    string `json:"author"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}
