package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocksoncodes/market-scout/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedPost(t *testing.T, s Store, submissionID string) {
	t.Helper()
	err := s.InTx(context.Background(), func(tx Tx) error {
		_, err := tx.InsertPosts(context.Background(), []model.Post{{
			SubmissionID: submissionID,
			Subreddit:    "ghana",
			Title:        "title " + submissionID,
			Body:         "body",
			UpvoteRatio:  0.9,
			Score:        120,
			CommentCount: 60,
			URL:          "https://reddit.com/" + submissionID,
		}})
		return err
	})
	require.NoError(t, err)
}

func seedSentiment(t *testing.T, s Store, submissionID string, summary model.Summary) {
	t.Helper()
	err := s.InTx(context.Background(), func(tx Tx) error {
		_, err := tx.InsertSentiments(context.Background(), []model.Sentiment{{
			PostID:  submissionID,
			Results: summary,
		}})
		return err
	})
	require.NoError(t, err)
}

func TestSQLiteStore_InsertAndQueryPosts(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	seedPost(t, s, "abc1")
	seedPost(t, s, "abc2")

	posts, err := s.AllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "abc1", posts[0].SubmissionID)
	assert.False(t, posts[0].IsCurated)
	assert.False(t, posts[0].IsProcessed)

	byID, err := s.PostsByIDs(ctx, []int64{posts[1].ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "abc2", byID[0].SubmissionID)
}

func TestSQLiteStore_DuplicatePostRollsBackBatch(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	seedPost(t, s, "dup1")

	err := s.InTx(ctx, func(tx Tx) error {
		_, err := tx.InsertPosts(ctx, []model.Post{
			{SubmissionID: "new1", Subreddit: "ghana", Title: "t"},
			{SubmissionID: "dup1", Subreddit: "ghana", Title: "t"},
		})
		return err
	})
	require.Error(t, err)

	// The whole batch rolled back, including the non-duplicate row.
	posts, err := s.AllPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestSQLiteStore_SeenSubmissionIDs(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	seen, err := s.SeenSubmissionIDs(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, seen)

	seedPost(t, s, "a")

	seen, err = s.SeenSubmissionIDs(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Contains(t, seen, "a")
	assert.NotContains(t, seen, "b")
}

func TestSQLiteStore_SeenLedgerSurvivesCleanup(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	seedPost(t, s, "gone")
	require.NoError(t, s.InTx(ctx, func(tx Tx) error {
		return tx.UpsertCuratedItems(ctx, []string{"gone"})
	}))

	require.NoError(t, s.InTx(ctx, func(tx Tx) error {
		if _, err := tx.DeletePostsBySubmissionIDs(ctx, []string{"gone"}); err != nil {
			return err
		}
		return tx.DeleteAllCuratedItems(ctx)
	}))

	posts, err := s.AllPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	// The ledger still remembers the id after the post is deleted.
	seen, err := s.SeenSubmissionIDs(ctx, []string{"gone"})
	require.NoError(t, err)
	assert.Contains(t, seen, "gone")
}

func TestSQLiteStore_CommentsForPost(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	seedPost(t, s, "p1")
	require.NoError(t, s.InTx(ctx, func(tx Tx) error {
		_, err := tx.InsertComments(ctx, []model.Comment{
			{SubmissionID: "p1", Subreddit: "ghana", Title: "t", Author: "alice", Body: "great news", Score: 4},
			{SubmissionID: "p1", Subreddit: "ghana", Title: "t", Author: "Unknown", Body: "meh", Score: 1},
		})
		return err
	}))

	comments, err := s.CommentsForPost(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "alice", comments[0].Author)
	assert.Equal(t, "meh", comments[1].Body)

	none, err := s.CommentsForPost(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_PostsWithSentiment(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	summary := model.Summary{
		Dominant:    model.LabelPositive,
		AvgCompound: 0.42,
		Counts:      map[model.Label]int{model.LabelPositive: 3, model.LabelNeutral: 1},
	}

	seedPost(t, s, "p1")
	seedPost(t, s, "p2")
	seedPost(t, s, "p3")
	seedSentiment(t, s, "p1", summary)
	seedSentiment(t, s, "p2", summary)

	out, err := s.PostsWithSentiment(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "p1", out[0].Post.SubmissionID)
	assert.Equal(t, model.LabelPositive, out[0].Summary.Dominant)
	assert.InDelta(t, 0.42, out[0].Summary.AvgCompound, 1e-9)
	assert.Equal(t, 3, out[0].Summary.Counts[model.LabelPositive])

	// Limit applies.
	one, err := s.PostsWithSentiment(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	// Re-queryable mid-session with the same stable order.
	again, err := s.PostsWithSentiment(ctx, 10)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, out[0].Post.SubmissionID, again[0].Post.SubmissionID)
}

func TestSQLiteStore_CurationTransitionAtomicity(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	summary := model.Summary{Dominant: model.LabelNeutral, Counts: map[model.Label]int{}}
	seedPost(t, s, "a")
	seedPost(t, s, "b")
	seedSentiment(t, s, "a", summary)
	seedSentiment(t, s, "b", summary)

	posts, err := s.AllPosts(ctx)
	require.NoError(t, err)
	postIDs := []int64{posts[0].ID, posts[1].ID}
	subIDs := []string{"a", "b"}

	// Forced failure after the brief insert: nothing persists, brief included.
	errBoom := eris.New("boom")
	err = s.InTx(ctx, func(tx Tx) error {
		if _, err := tx.InsertBrief(ctx, "half-done brief"); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	brief, err := s.FirstBrief(ctx)
	require.NoError(t, err)
	assert.Nil(t, brief)

	// Successful transition: brief, flags and curated items all land together.
	err = s.InTx(ctx, func(tx Tx) error {
		if _, err := tx.InsertBrief(ctx, "the brief"); err != nil {
			return err
		}
		if err := tx.MarkPostsCurated(ctx, postIDs); err != nil {
			return err
		}
		if err := tx.MarkSentimentsCurated(ctx, subIDs); err != nil {
			return err
		}
		return tx.UpsertCuratedItems(ctx, subIDs)
	})
	require.NoError(t, err)

	brief, err = s.FirstBrief(ctx)
	require.NoError(t, err)
	require.NotNil(t, brief)
	assert.Equal(t, "the brief", brief.Content)

	posts, err = s.AllPosts(ctx)
	require.NoError(t, err)
	for _, p := range posts {
		assert.True(t, p.IsCurated, "post %s", p.SubmissionID)
	}

	curated, err := s.CuratedSubmissionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, curated)

	// Curated posts no longer surface to the curator.
	remaining, err := s.PostsWithSentiment(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSQLiteStore_UpsertCuratedItemsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	seedPost(t, s, "x")
	for i := 0; i < 2; i++ {
		require.NoError(t, s.InTx(ctx, func(tx Tx) error {
			return tx.UpsertCuratedItems(ctx, []string{"x"})
		}))
	}

	ids, err := s.CuratedSubmissionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids)
}

func TestSQLiteStore_DeleteCascades(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	summary := model.Summary{Dominant: model.LabelNeutral, Counts: map[model.Label]int{}}
	for _, id := range []string{"a", "b", "c"} {
		seedPost(t, s, id)
		seedSentiment(t, s, id, summary)
		require.NoError(t, s.InTx(ctx, func(tx Tx) error {
			_, err := tx.InsertComments(ctx, []model.Comment{
				{SubmissionID: id, Subreddit: "ghana", Title: "t", Author: "u", Body: "c", Score: 1},
			})
			return err
		}))
	}

	var deleted int
	require.NoError(t, s.InTx(ctx, func(tx Tx) error {
		n, err := tx.DeletePostsBySubmissionIDs(ctx, []string{"a", "b"})
		deleted = n
		return err
	}))
	assert.Equal(t, 2, deleted)

	posts, err := s.AllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "c", posts[0].SubmissionID)

	// Children of the deleted posts cascade away, survivors stay.
	for _, id := range []string{"a", "b"} {
		comments, err := s.CommentsForPost(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, comments)
	}
	comments, err := s.CommentsForPost(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	sentimentIDs, err := s.SentimentPostIDs(ctx)
	require.NoError(t, err)
	assert.NotContains(t, sentimentIDs, "a")
	assert.Contains(t, sentimentIDs, "c")
}

func TestSQLiteStore_MarkPostsProcessed(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	seedPost(t, s, "p1")
	seedPost(t, s, "p2")

	require.NoError(t, s.InTx(ctx, func(tx Tx) error {
		return tx.MarkPostsProcessed(ctx, []string{"p1"})
	}))

	posts, err := s.AllPosts(ctx)
	require.NoError(t, err)
	assert.True(t, posts[0].IsProcessed)
	assert.False(t, posts[1].IsProcessed)
}

func TestSQLiteStore_FirstBriefInsertionOrder(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.InTx(ctx, func(tx Tx) error {
		if _, err := tx.InsertBrief(ctx, "first"); err != nil {
			return err
		}
		_, err := tx.InsertBrief(ctx, "second")
		return err
	}))

	brief, err := s.FirstBrief(ctx)
	require.NoError(t, err)
	require.NotNil(t, brief)
	assert.Equal(t, "first", brief.Content)
}
