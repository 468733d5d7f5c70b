package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/rocksoncodes/market-scout/internal/resilience"
)

func newTestClient(t *testing.T, srv *httptest.Server) Client {
	t.Helper()
	return NewClient(
		WithBaseURL(srv.URL),
		WithRateLimit(rate.NewLimiter(rate.Inf, 1)),
		WithRetryPolicy(resilience.Policy{Attempts: 3, BaseDelay: time.Millisecond, Jitter: 0}),
	)
}

const hotListing = `{
	"kind": "Listing",
	"data": {
		"children": [
			{"kind": "t3", "data": {
				"id": "1abc2d", "name": "t3_1abc2d", "subreddit": "smallbusiness",
				"title": "Inventory tracking is a mess", "selftext": "Spreadsheets everywhere.",
				"upvote_ratio": 0.94, "score": 120, "num_comments": 63,
				"url": "https://www.reddit.com/r/smallbusiness/comments/1abc2d/x/",
				"stickied": false
			}},
			{"kind": "t3", "data": {
				"id": "pinned", "name": "t3_pinned", "subreddit": "smallbusiness",
				"title": "Weekly thread", "stickied": true, "upvote_ratio": 0.99,
				"score": 10, "num_comments": 5, "permalink": "/r/smallbusiness/comments/pinned/x/",
				"url": ""
			}},
			{"kind": "t5", "data": {"id": "junk"}}
		]
	}
}`

func TestListHot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/smallbusiness/hot.json", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(hotListing))
	}))
	defer srv.Close()

	posts, err := newTestClient(t, srv).ListHot(context.Background(), "smallbusiness", 25)
	require.NoError(t, err)
	require.Len(t, posts, 2) // the t5 child is dropped

	assert.Equal(t, "1abc2d", posts[0].ID)
	assert.Equal(t, "t3_1abc2d", posts[0].FullName)
	assert.Equal(t, "Inventory tracking is a mess", posts[0].Title)
	assert.Equal(t, "Spreadsheets everywhere.", posts[0].Body)
	assert.InDelta(t, 0.94, posts[0].UpvoteRatio, 1e-9)
	assert.Equal(t, 120, posts[0].Score)
	assert.Equal(t, 63, posts[0].CommentCount)
	assert.False(t, posts[0].Stickied)

	// Empty url falls back to the permalink.
	assert.True(t, posts[1].Stickied)
	assert.Equal(t, "https://www.reddit.com/r/smallbusiness/comments/pinned/x/", posts[1].URL)
}

const commentThread = `[
	{"kind": "Listing", "data": {"children": [
		{"kind": "t3", "data": {"id": "1abc2d", "title": "Inventory tracking is a mess"}}
	]}},
	{"kind": "Listing", "data": {"children": [
		{"kind": "t1", "data": {"author": "shopkeeper", "body": "Same here, it never works.", "score": 12}},
		{"kind": "t1", "data": {"author": "ops_guy", "body": "[deleted]", "score": 1}},
		{"kind": "more", "data": {}}
	]}}
]`

func TestListComments(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/smallbusiness/comments/1abc2d.json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("depth"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(commentThread))
	}))
	defer srv.Close()

	comments, err := newTestClient(t, srv).ListComments(context.Background(), "smallbusiness", "1abc2d", 80)
	require.NoError(t, err)
	require.Len(t, comments, 2) // the "more" stub is dropped

	assert.Equal(t, "shopkeeper", comments[0].Author)
	assert.Equal(t, "Same here, it never works.", comments[0].Body)
	assert.Equal(t, 12, comments[0].Score)
}

func TestListHotRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(hotListing))
	}))
	defer srv.Close()

	posts, err := newTestClient(t, srv).ListHot(context.Background(), "smallbusiness", 25)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListHotPermanentError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": 404}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).ListHot(context.Background(), "gone", 25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestEnsureConnected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/popular/hot.json", r.URL.Path)
		w.Write([]byte(`{"kind": "Listing", "data": {"children": []}}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(t, srv).EnsureConnected(context.Background()))
}

func TestEnsureConnectedFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	require.Error(t, newTestClient(t, srv).EnsureConnected(context.Background()))
}
