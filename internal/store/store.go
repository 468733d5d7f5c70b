package store

import (
	"context"

	"github.com/rocksoncodes/market-scout/internal/model"
)

// Store defines the persistence interface for the curation lifecycle.
//
// Read operations run in autocommit mode and are safe to call re-entrantly
// (the curator's tool callback depends on this). Every mutation lives on Tx;
// the store itself never commits — InTx commits when fn returns nil and rolls
// back on error or panic, so commit/rollback boundaries always belong to the
// caller's unit of work.
type Store interface {
	// Integrity gate support. Queries the ever-seen ledger, which survives
	// retention cleanup, so a submission id is rejected for the lifetime of
	// the system and not merely while its post row exists.
	SeenSubmissionIDs(ctx context.Context, ids []string) (map[string]struct{}, error)

	// Posts and comments
	AllPosts(ctx context.Context) ([]model.Post, error)
	CommentsForPost(ctx context.Context, submissionID string) ([]model.Comment, error)
	PostsByIDs(ctx context.Context, ids []int64) ([]model.Post, error)

	// Sentiments
	SentimentPostIDs(ctx context.Context) (map[string]struct{}, error)

	// Curator input: not-yet-curated posts joined with their sentiment
	// rollups, ordered by post row id so the query is stable mid-session.
	PostsWithSentiment(ctx context.Context, limit int) ([]model.PostWithSentiment, error)

	// Egress input: the first brief in insertion order.
	FirstBrief(ctx context.Context) (*model.CuratedBrief, error)

	// Retention input
	CuratedSubmissionIDs(ctx context.Context) ([]string, error)

	// InTx runs fn inside a single transaction.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Tx is the mutation surface of a single in-flight transaction.
type Tx interface {
	// InsertPosts persists posts and records their submission ids in the
	// ever-seen ledger. Returns the number of posts inserted.
	InsertPosts(ctx context.Context, posts []model.Post) (int, error)
	InsertComments(ctx context.Context, comments []model.Comment) (int, error)
	InsertSentiments(ctx context.Context, sentiments []model.Sentiment) (int, error)
	MarkPostsProcessed(ctx context.Context, submissionIDs []string) error

	// Curation transition. All four are issued inside one InTx unit so a
	// brief is never retained without its markings, nor the reverse.
	InsertBrief(ctx context.Context, content string) (int64, error)
	MarkPostsCurated(ctx context.Context, postIDs []int64) error
	MarkSentimentsCurated(ctx context.Context, submissionIDs []string) error
	UpsertCuratedItems(ctx context.Context, submissionIDs []string) error

	// Retention. Post deletion cascades to comments and sentiments.
	DeletePostsBySubmissionIDs(ctx context.Context, submissionIDs []string) (int, error)
	DeleteAllCuratedItems(ctx context.Context) error
}
