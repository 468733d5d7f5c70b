package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rocksoncodes/market-scout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
// Foreign keys are enabled so post deletion cascades to comments and
// sentiments.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS posts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	submission_id TEXT NOT NULL UNIQUE,
	subreddit     TEXT NOT NULL,
	title         TEXT NOT NULL,
	body          TEXT,
	upvote_ratio  REAL,
	score         INTEGER,
	comment_count INTEGER,
	post_url      TEXT,
	is_processed  INTEGER NOT NULL DEFAULT 0,
	is_curated    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS comments (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	submission_id TEXT NOT NULL REFERENCES posts(submission_id) ON DELETE CASCADE,
	subreddit     TEXT NOT NULL,
	title         TEXT NOT NULL,
	author        TEXT,
	body          TEXT,
	score         INTEGER
);

CREATE TABLE IF NOT EXISTS sentiments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id    TEXT NOT NULL REFERENCES posts(submission_id) ON DELETE CASCADE,
	results    TEXT NOT NULL,
	is_curated INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS curated_briefs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS curated_items (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	submission_id TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS seen_submissions (
	submission_id TEXT PRIMARY KEY,
	first_seen_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_comments_submission_id ON comments(submission_id);
CREATE INDEX IF NOT EXISTS idx_sentiments_post_id ON sentiments(post_id);
CREATE INDEX IF NOT EXISTS idx_posts_is_curated ON posts(is_curated);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SeenSubmissionIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if len(ids) == 0 {
		return map[string]struct{}{}, nil
	}

	query := `SELECT submission_id FROM seen_submissions WHERE submission_id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, toAnySlice(ids)...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query seen submissions")
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan seen submission")
		}
		seen[id] = struct{}{}
	}
	return seen, eris.Wrap(rows.Err(), "sqlite: iterate seen submissions")
}

func (s *SQLiteStore) AllPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, subreddit, title, body, upvote_ratio, score, comment_count, post_url, is_processed, is_curated
		 FROM posts ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query all posts")
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, eris.Wrap(rows.Err(), "sqlite: iterate posts")
}

func (s *SQLiteStore) CommentsForPost(ctx context.Context, submissionID string) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, subreddit, title, author, body, score FROM comments WHERE submission_id = ? ORDER BY id`,
		submissionID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query comments for %s", submissionID)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		var author sql.NullString
		if err := rows.Scan(&c.ID, &c.SubmissionID, &c.Subreddit, &c.Title, &author, &c.Body, &c.Score); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan comment")
		}
		c.Author = author.String
		comments = append(comments, c)
	}
	return comments, eris.Wrap(rows.Err(), "sqlite: iterate comments")
}

func (s *SQLiteStore) PostsByIDs(ctx context.Context, ids []int64) ([]model.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT id, submission_id, subreddit, title, body, upvote_ratio, score, comment_count, post_url, is_processed, is_curated
		 FROM posts WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query posts by ids")
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, eris.Wrap(rows.Err(), "sqlite: iterate posts by ids")
}

func (s *SQLiteStore) SentimentPostIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT post_id FROM sentiments`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query sentiment post ids")
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sentiment post id")
		}
		ids[id] = struct{}{}
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate sentiment post ids")
}

func (s *SQLiteStore) PostsWithSentiment(ctx context.Context, limit int) ([]model.PostWithSentiment, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.submission_id, p.subreddit, p.title, p.body, p.upvote_ratio, p.score, p.comment_count, p.post_url, p.is_processed, p.is_curated, sn.results
		 FROM posts p
		 JOIN sentiments sn ON sn.post_id = p.submission_id
		 WHERE p.is_curated = 0
		 ORDER BY p.id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query posts with sentiment")
	}
	defer rows.Close()

	var out []model.PostWithSentiment
	for rows.Next() {
		var pws model.PostWithSentiment
		var resultsJSON string
		p := &pws.Post
		err := rows.Scan(&p.ID, &p.SubmissionID, &p.Subreddit, &p.Title, &p.Body, &p.UpvoteRatio,
			&p.Score, &p.CommentCount, &p.URL, &p.IsProcessed, &p.IsCurated, &resultsJSON)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan post with sentiment")
		}
		if err := json.Unmarshal([]byte(resultsJSON), &pws.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal sentiment results")
		}
		out = append(out, pws)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate posts with sentiment")
}

func (s *SQLiteStore) FirstBrief(ctx context.Context) (*model.CuratedBrief, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, created_at FROM curated_briefs ORDER BY id LIMIT 1`,
	)

	var b model.CuratedBrief
	err := row.Scan(&b.ID, &b.Content, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get first brief")
	}
	return &b, nil
}

func (s *SQLiteStore) CuratedSubmissionIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT submission_id FROM curated_items ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query curated items")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan curated item")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate curated items")
}

func (s *SQLiteStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqliteTx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return eris.Wrap(sqlTx.Commit(), "sqlite: commit")
}

// sqliteTx implements Tx on a *sql.Tx. It never commits or rolls back itself.
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) InsertPosts(ctx context.Context, posts []model.Post) (int, error) {
	count := 0
	for _, p := range posts {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO posts (submission_id, subreddit, title, body, upvote_ratio, score, comment_count, post_url)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.SubmissionID, p.Subreddit, p.Title, p.Body, p.UpvoteRatio, p.Score, p.CommentCount, p.URL,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert post %s", p.SubmissionID)
		}
		_, err = t.tx.ExecContext(ctx,
			`INSERT INTO seen_submissions (submission_id) VALUES (?) ON CONFLICT(submission_id) DO NOTHING`,
			p.SubmissionID,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: record seen submission %s", p.SubmissionID)
		}
		count++
	}
	return count, nil
}

func (t *sqliteTx) InsertComments(ctx context.Context, comments []model.Comment) (int, error) {
	count := 0
	for _, c := range comments {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO comments (submission_id, subreddit, title, author, body, score) VALUES (?, ?, ?, ?, ?, ?)`,
			c.SubmissionID, c.Subreddit, c.Title, c.Author, c.Body, c.Score,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert comment for %s", c.SubmissionID)
		}
		count++
	}
	return count, nil
}

func (t *sqliteTx) InsertSentiments(ctx context.Context, sentiments []model.Sentiment) (int, error) {
	count := 0
	for _, sn := range sentiments {
		resultsJSON, err := json.Marshal(sn.Results)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal sentiment results")
		}
		_, err = t.tx.ExecContext(ctx,
			`INSERT INTO sentiments (post_id, results) VALUES (?, ?)`,
			sn.PostID, string(resultsJSON),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert sentiment for %s", sn.PostID)
		}
		count++
	}
	return count, nil
}

func (t *sqliteTx) MarkPostsProcessed(ctx context.Context, submissionIDs []string) error {
	if len(submissionIDs) == 0 {
		return nil
	}
	query := `UPDATE posts SET is_processed = 1 WHERE submission_id IN (` + placeholders(len(submissionIDs)) + `)`
	_, err := t.tx.ExecContext(ctx, query, toAnySlice(submissionIDs)...)
	return eris.Wrap(err, "sqlite: mark posts processed")
}

func (t *sqliteTx) InsertBrief(ctx context.Context, content string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `INSERT INTO curated_briefs (content) VALUES (?)`, content)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert brief")
	}
	id, err := res.LastInsertId()
	return id, eris.Wrap(err, "sqlite: brief last insert id")
}

func (t *sqliteTx) MarkPostsCurated(ctx context.Context, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	args := make([]any, len(postIDs))
	for i, id := range postIDs {
		args[i] = id
	}
	query := `UPDATE posts SET is_curated = 1 WHERE id IN (` + placeholders(len(postIDs)) + `)`
	_, err := t.tx.ExecContext(ctx, query, args...)
	return eris.Wrap(err, "sqlite: mark posts curated")
}

func (t *sqliteTx) MarkSentimentsCurated(ctx context.Context, submissionIDs []string) error {
	if len(submissionIDs) == 0 {
		return nil
	}
	query := `UPDATE sentiments SET is_curated = 1 WHERE post_id IN (` + placeholders(len(submissionIDs)) + `)`
	_, err := t.tx.ExecContext(ctx, query, toAnySlice(submissionIDs)...)
	return eris.Wrap(err, "sqlite: mark sentiments curated")
}

func (t *sqliteTx) UpsertCuratedItems(ctx context.Context, submissionIDs []string) error {
	for _, id := range submissionIDs {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO curated_items (submission_id) VALUES (?) ON CONFLICT(submission_id) DO NOTHING`,
			id,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert curated item %s", id)
		}
	}
	return nil
}

func (t *sqliteTx) DeletePostsBySubmissionIDs(ctx context.Context, submissionIDs []string) (int, error) {
	if len(submissionIDs) == 0 {
		return 0, nil
	}
	query := `DELETE FROM posts WHERE submission_id IN (` + placeholders(len(submissionIDs)) + `)`
	res, err := t.tx.ExecContext(ctx, query, toAnySlice(submissionIDs)...)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete posts")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: delete posts rows affected")
}

func (t *sqliteTx) DeleteAllCuratedItems(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM curated_items`)
	return eris.Wrap(err, "sqlite: delete curated items")
}

// helpers

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAnySlice(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPost(row scannable) (*model.Post, error) {
	var p model.Post
	var body, url sql.NullString
	err := row.Scan(&p.ID, &p.SubmissionID, &p.Subreddit, &p.Title, &body, &p.UpvoteRatio,
		&p.Score, &p.CommentCount, &url, &p.IsProcessed, &p.IsCurated)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan post")
	}
	p.Body = body.String
	p.URL = url.String
	return &p, nil
}
