package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/rocksoncodes/market-scout/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS posts (
	id            BIGSERIAL PRIMARY KEY,
	submission_id TEXT NOT NULL UNIQUE,
	subreddit     TEXT NOT NULL,
	title         TEXT NOT NULL,
	body          TEXT,
	upvote_ratio  DOUBLE PRECISION,
	score         INTEGER,
	comment_count INTEGER,
	post_url      TEXT,
	is_processed  BOOLEAN NOT NULL DEFAULT false,
	is_curated    BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS comments (
	id            BIGSERIAL PRIMARY KEY,
	submission_id TEXT NOT NULL REFERENCES posts(submission_id) ON DELETE CASCADE,
	subreddit     TEXT NOT NULL,
	title         TEXT NOT NULL,
	author        TEXT,
	body          TEXT,
	score         INTEGER
);

CREATE TABLE IF NOT EXISTS sentiments (
	id         BIGSERIAL PRIMARY KEY,
	post_id    TEXT NOT NULL REFERENCES posts(submission_id) ON DELETE CASCADE,
	results    JSONB NOT NULL,
	is_curated BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS curated_briefs (
	id         BIGSERIAL PRIMARY KEY,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS curated_items (
	id            BIGSERIAL PRIMARY KEY,
	submission_id TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS seen_submissions (
	submission_id TEXT PRIMARY KEY,
	first_seen_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_comments_submission_id ON comments(submission_id);
CREATE INDEX IF NOT EXISTS idx_sentiments_post_id ON sentiments(post_id);
CREATE INDEX IF NOT EXISTS idx_posts_is_curated ON posts(is_curated);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SeenSubmissionIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if len(ids) == 0 {
		return map[string]struct{}{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT submission_id FROM seen_submissions WHERE submission_id = ANY($1)`, ids)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query seen submissions")
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan seen submission")
		}
		seen[id] = struct{}{}
	}
	return seen, eris.Wrap(rows.Err(), "postgres: iterate seen submissions")
}

const postgresPostColumns = `id, submission_id, subreddit, title, COALESCE(body, ''), upvote_ratio, score, comment_count, COALESCE(post_url, ''), is_processed, is_curated`

func (s *PostgresStore) AllPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+postgresPostColumns+` FROM posts ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query all posts")
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (s *PostgresStore) CommentsForPost(ctx context.Context, submissionID string) ([]model.Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, submission_id, subreddit, title, COALESCE(author, ''), body, score FROM comments WHERE submission_id = $1 ORDER BY id`,
		submissionID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query comments for %s", submissionID)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.SubmissionID, &c.Subreddit, &c.Title, &c.Author, &c.Body, &c.Score); err != nil {
			return nil, eris.Wrap(err, "postgres: scan comment")
		}
		comments = append(comments, c)
	}
	return comments, eris.Wrap(rows.Err(), "postgres: iterate comments")
}

func (s *PostgresStore) PostsByIDs(ctx context.Context, ids []int64) ([]model.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresPostColumns+` FROM posts WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query posts by ids")
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (s *PostgresStore) SentimentPostIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT post_id FROM sentiments`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query sentiment post ids")
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sentiment post id")
		}
		ids[id] = struct{}{}
	}
	return ids, eris.Wrap(rows.Err(), "postgres: iterate sentiment post ids")
}

func (s *PostgresStore) PostsWithSentiment(ctx context.Context, limit int) ([]model.PostWithSentiment, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.submission_id, p.subreddit, p.title, COALESCE(p.body, ''), p.upvote_ratio, p.score, p.comment_count, COALESCE(p.post_url, ''), p.is_processed, p.is_curated, sn.results
		 FROM posts p
		 JOIN sentiments sn ON sn.post_id = p.submission_id
		 WHERE p.is_curated = false
		 ORDER BY p.id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query posts with sentiment")
	}
	defer rows.Close()

	var out []model.PostWithSentiment
	for rows.Next() {
		var pws model.PostWithSentiment
		var resultsJSON []byte
		p := &pws.Post
		err := rows.Scan(&p.ID, &p.SubmissionID, &p.Subreddit, &p.Title, &p.Body, &p.UpvoteRatio,
			&p.Score, &p.CommentCount, &p.URL, &p.IsProcessed, &p.IsCurated, &resultsJSON)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan post with sentiment")
		}
		if err := json.Unmarshal(resultsJSON, &pws.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal sentiment results")
		}
		out = append(out, pws)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate posts with sentiment")
}

func (s *PostgresStore) FirstBrief(ctx context.Context) (*model.CuratedBrief, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, content, created_at FROM curated_briefs ORDER BY id LIMIT 1`)

	var b model.CuratedBrief
	err := row.Scan(&b.ID, &b.Content, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get first brief")
	}
	return &b, nil
}

func (s *PostgresStore) CuratedSubmissionIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT submission_id FROM curated_items ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query curated items")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan curated item")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "postgres: iterate curated items")
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	pgxTx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = pgxTx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&postgresTx{tx: pgxTx}); err != nil {
		_ = pgxTx.Rollback(ctx)
		return err
	}
	return eris.Wrap(pgxTx.Commit(ctx), "postgres: commit")
}

// postgresTx implements Tx on a pgx.Tx. It never commits or rolls back itself.
type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) InsertPosts(ctx context.Context, posts []model.Post) (int, error) {
	count := 0
	for _, p := range posts {
		_, err := t.tx.Exec(ctx,
			`INSERT INTO posts (submission_id, subreddit, title, body, upvote_ratio, score, comment_count, post_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.SubmissionID, p.Subreddit, p.Title, p.Body, p.UpvoteRatio, p.Score, p.CommentCount, p.URL,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: insert post %s", p.SubmissionID)
		}
		_, err = t.tx.Exec(ctx,
			`INSERT INTO seen_submissions (submission_id) VALUES ($1) ON CONFLICT (submission_id) DO NOTHING`,
			p.SubmissionID,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: record seen submission %s", p.SubmissionID)
		}
		count++
	}
	return count, nil
}

func (t *postgresTx) InsertComments(ctx context.Context, comments []model.Comment) (int, error) {
	count := 0
	for _, c := range comments {
		_, err := t.tx.Exec(ctx,
			`INSERT INTO comments (submission_id, subreddit, title, author, body, score) VALUES ($1, $2, $3, $4, $5, $6)`,
			c.SubmissionID, c.Subreddit, c.Title, c.Author, c.Body, c.Score,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: insert comment for %s", c.SubmissionID)
		}
		count++
	}
	return count, nil
}

func (t *postgresTx) InsertSentiments(ctx context.Context, sentiments []model.Sentiment) (int, error) {
	count := 0
	for _, sn := range sentiments {
		resultsJSON, err := json.Marshal(sn.Results)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal sentiment results")
		}
		_, err = t.tx.Exec(ctx,
			`INSERT INTO sentiments (post_id, results) VALUES ($1, $2)`,
			sn.PostID, resultsJSON,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: insert sentiment for %s", sn.PostID)
		}
		count++
	}
	return count, nil
}

func (t *postgresTx) MarkPostsProcessed(ctx context.Context, submissionIDs []string) error {
	if len(submissionIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`UPDATE posts SET is_processed = true WHERE submission_id = ANY($1)`, submissionIDs)
	return eris.Wrap(err, "postgres: mark posts processed")
}

func (t *postgresTx) InsertBrief(ctx context.Context, content string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO curated_briefs (content) VALUES ($1) RETURNING id`, content).Scan(&id)
	return id, eris.Wrap(err, "postgres: insert brief")
}

func (t *postgresTx) MarkPostsCurated(ctx context.Context, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`UPDATE posts SET is_curated = true WHERE id = ANY($1)`, postIDs)
	return eris.Wrap(err, "postgres: mark posts curated")
}

func (t *postgresTx) MarkSentimentsCurated(ctx context.Context, submissionIDs []string) error {
	if len(submissionIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`UPDATE sentiments SET is_curated = true WHERE post_id = ANY($1)`, submissionIDs)
	return eris.Wrap(err, "postgres: mark sentiments curated")
}

func (t *postgresTx) UpsertCuratedItems(ctx context.Context, submissionIDs []string) error {
	for _, id := range submissionIDs {
		_, err := t.tx.Exec(ctx,
			`INSERT INTO curated_items (submission_id) VALUES ($1) ON CONFLICT (submission_id) DO NOTHING`, id)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert curated item %s", id)
		}
	}
	return nil
}

func (t *postgresTx) DeletePostsBySubmissionIDs(ctx context.Context, submissionIDs []string) (int, error) {
	if len(submissionIDs) == 0 {
		return 0, nil
	}
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM posts WHERE submission_id = ANY($1)`, submissionIDs)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete posts")
	}
	return int(tag.RowsAffected()), nil
}

func (t *postgresTx) DeleteAllCuratedItems(ctx context.Context) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM curated_items`)
	return eris.Wrap(err, "postgres: delete curated items")
}

// collectPosts drains rows produced by a postgresPostColumns select.
func collectPosts(rows pgx.Rows) ([]model.Post, error) {
	var posts []model.Post
	for rows.Next() {
		var p model.Post
		err := rows.Scan(&p.ID, &p.SubmissionID, &p.Subreddit, &p.Title, &p.Body, &p.UpvoteRatio,
			&p.Score, &p.CommentCount, &p.URL, &p.IsProcessed, &p.IsCurated)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan post")
		}
		posts = append(posts, p)
	}
	return posts, eris.Wrap(rows.Err(), "postgres: iterate posts")
}
