// Package reddit provides a read-only client for the public Reddit listing
// API (the *.json endpoints, no OAuth).
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/rocksoncodes/market-scout/internal/resilience"
)

// Client defines the listing operations the ingest stage needs.
type Client interface {
	// EnsureConnected verifies the API is reachable before a session starts.
	EnsureConnected(ctx context.Context) error
	// ListHot returns the hot listing of a subreddit, newest ranking first.
	ListHot(ctx context.Context, subreddit string, limit int) ([]Post, error)
	// ListComments returns the top-level comments of a submission.
	ListComments(ctx context.Context, subreddit, articleID string, limit int) ([]Comment, error)
}

// Post is one submission from a listing.
type Post struct {
	ID           string  // article id, e.g. "1abc2d"
	FullName     string  // source key with kind prefix, e.g. "t3_1abc2d"
	Subreddit    string
	Title        string
	Body         string
	UpvoteRatio  float64
	Score        int
	CommentCount int
	URL          string
	Stickied     bool
}

// Comment is one top-level comment on a submission.
type Comment struct {
	Author string
	Body   string
	Score  int
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent overrides the User-Agent header. Reddit throttles generic
// agents aggressively, so real deployments should set a descriptive one.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithRetryPolicy overrides the retry pacing.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) {
		c.retry = p
	}
}

// WithRateLimit overrides the request pacing.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	retry     resilience.Policy
}

// NewClient creates a Reddit listing client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   "https://www.reddit.com",
		userAgent: "market-scout/1.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// Unauthenticated clients get ~10 requests/minute before throttling.
		limiter: rate.NewLimiter(rate.Every(6*time.Second), 2),
		retry:   resilience.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) EnsureConnected(ctx context.Context) error {
	body, err := c.get(ctx, "/r/popular/hot.json", url.Values{"limit": {"1"}})
	if err != nil {
		return eris.Wrap(err, "reddit: connectivity check")
	}
	var probe listing
	if err := json.Unmarshal(body, &probe); err != nil {
		return eris.Wrap(err, "reddit: connectivity check decode")
	}
	return nil
}

func (c *httpClient) ListHot(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	path := fmt.Sprintf("/r/%s/hot.json", url.PathEscape(subreddit))
	body, err := c.get(ctx, path, url.Values{"limit": {fmt.Sprint(limit)}})
	if err != nil {
		return nil, eris.Wrapf(err, "reddit: list hot r/%s", subreddit)
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, eris.Wrapf(err, "reddit: decode hot listing r/%s", subreddit)
	}

	posts := make([]Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		d := child.Data
		u := d.URL
		if u == "" {
			u = "https://www.reddit.com" + d.Permalink
		}
		posts = append(posts, Post{
			ID:           d.ID,
			FullName:     d.Name,
			Subreddit:    d.Subreddit,
			Title:        d.Title,
			Body:         d.SelfText,
			UpvoteRatio:  d.UpvoteRatio,
			Score:        d.Score,
			CommentCount: d.NumComments,
			URL:          u,
			Stickied:     d.Stickied,
		})
	}
	return posts, nil
}

func (c *httpClient) ListComments(ctx context.Context, subreddit, articleID string, limit int) ([]Comment, error) {
	path := fmt.Sprintf("/r/%s/comments/%s.json", url.PathEscape(subreddit), url.PathEscape(articleID))
	body, err := c.get(ctx, path, url.Values{
		"limit": {fmt.Sprint(limit)},
		"depth": {"1"},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "reddit: list comments %s", articleID)
	}

	// The comments endpoint returns a two-element array: the submission
	// listing, then the comment listing.
	var pair []listing
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, eris.Wrapf(err, "reddit: decode comments %s", articleID)
	}
	if len(pair) < 2 {
		return nil, nil
	}

	comments := make([]Comment, 0, len(pair[1].Data.Children))
	for _, child := range pair[1].Data.Children {
		// "more" stubs and nested kinds are skipped.
		if child.Kind != "t1" {
			continue
		}
		comments = append(comments, Comment{
			Author: child.Data.Author,
			Body:   child.Data.Body,
			Score:  child.Data.Score,
		})
	}
	return comments, nil
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return resilience.DoValue(ctx, c.retry, "reddit "+path, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		reqURL := c.baseURL + path
		if len(query) > 0 {
			reqURL += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "reddit: create request")
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "reddit: read response body")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("reddit: status %d: %s", resp.StatusCode, truncate(string(body), 200))
			if resilience.RetryableStatus(resp.StatusCode) {
				return nil, resilience.MarkTransient(err, resp.StatusCode)
			}
			return nil, err
		}
		return body, nil
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// listing mirrors the wire shape of a Reddit Thing listing.
type listing struct {
	Kind string      `json:"kind"`
	Data listingData `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
}

type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

type thingData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Stickied    bool    `json:"stickied"`
	Author      string  `json:"author"`
	Body        string  `json:"body"`
}
