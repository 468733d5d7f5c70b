// Package ingest implements the ingress stage: fetch hot submissions, filter
// for traction, gate out ever-seen keys, and persist posts with their
// comments in one transaction.
package ingest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rocksoncodes/market-scout/internal/integrity"
	"github.com/rocksoncodes/market-scout/internal/model"
	"github.com/rocksoncodes/market-scout/internal/store"
	"github.com/rocksoncodes/market-scout/pkg/reddit"
)

// Config holds the tunables of one ingest pass.
type Config struct {
	Subreddits     []string
	PostLimit      int
	CommentLimit   int
	MinComments    int
	MinScore       int
	MinUpvoteRatio float64
	// FetchConcurrency bounds parallel comment fetches. Default 4.
	FetchConcurrency int
}

// Service runs the ingress stage.
type Service struct {
	store store.Store
	src   reddit.Client
	cfg   Config
}

// NewService creates the ingest service.
func NewService(st store.Store, src reddit.Client, cfg Config) *Service {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 4
	}
	return &Service{store: st, src: src, cfg: cfg}
}

// Run executes one ingest pass. Comments are fetched only for submissions
// that pass the integrity gate. Listing and comment fetches degrade: a
// failed subreddit or thread is logged and skipped, and the pass stores
// whatever was fetched. The store batch itself still commits atomically.
func (s *Service) Run(ctx context.Context) error {
	if err := s.src.EnsureConnected(ctx); err != nil {
		return eris.Wrap(err, "ingest: source unavailable")
	}

	candidates := s.fetchCandidates(ctx)

	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.FullName)
	}

	fresh, err := integrity.FilterNew(ctx, ids, s.store)
	if err != nil {
		return eris.Wrap(err, "ingest: integrity gate")
	}
	if len(fresh) == 0 {
		zap.L().Info("ingest: no new submissions", zap.Int("candidates", len(candidates)))
		return nil
	}

	byKey := make(map[string]reddit.Post, len(candidates))
	for _, p := range candidates {
		byKey[p.FullName] = p
	}

	posts, comments := s.fetchComments(ctx, fresh, byKey)

	err = s.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.InsertPosts(ctx, posts); err != nil {
			return err
		}
		_, err := tx.InsertComments(ctx, comments)
		return err
	})
	if err != nil {
		return eris.Wrap(err, "ingest: store batch")
	}

	zap.L().Info("ingest complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("new_posts", len(posts)),
		zap.Int("comments", len(comments)),
	)
	return nil
}

// fetchCandidates lists the hot pages of every configured subreddit and keeps
// the submissions that clear the traction filter. A failed listing skips that
// subreddit; the others are still scanned.
func (s *Service) fetchCandidates(ctx context.Context) []reddit.Post {
	var candidates []reddit.Post
	for _, sub := range s.cfg.Subreddits {
		listing, err := s.src.ListHot(ctx, sub, s.cfg.PostLimit)
		if err != nil {
			zap.L().Warn("ingest: subreddit listing failed, skipping",
				zap.String("subreddit", sub),
				zap.Error(err),
			)
			continue
		}
		kept := 0
		for _, p := range listing {
			if s.keep(p) {
				candidates = append(candidates, p)
				kept++
			}
		}
		zap.L().Debug("subreddit scanned",
			zap.String("subreddit", sub),
			zap.Int("listed", len(listing)),
			zap.Int("kept", kept),
		)
	}
	return candidates
}

// keep is the traction filter: enough engagement, positive reception, not a
// pinned housekeeping thread.
func (s *Service) keep(p reddit.Post) bool {
	return !p.Stickied &&
		p.UpvoteRatio >= s.cfg.MinUpvoteRatio &&
		p.Score >= s.cfg.MinScore &&
		p.CommentCount >= s.cfg.MinComments
}

// fetchComments pulls comment threads for the gate-passed submissions with
// bounded concurrency and converts everything to storage rows. A failed
// thread fetch keeps its post with zero comments rather than dropping it.
func (s *Service) fetchComments(ctx context.Context, fresh []string, byKey map[string]reddit.Post) ([]model.Post, []model.Comment) {
	posts := make([]model.Post, 0, len(fresh))
	for _, key := range fresh {
		posts = append(posts, toModelPost(byKey[key]))
	}

	var (
		mu       sync.Mutex
		comments []model.Comment
		failed   atomic.Int32
	)
	var g errgroup.Group
	g.SetLimit(s.cfg.FetchConcurrency)

	for _, key := range fresh {
		src := byKey[key]
		g.Go(func() error {
			thread, err := s.src.ListComments(ctx, src.Subreddit, src.ID, s.cfg.CommentLimit)
			if err != nil {
				zap.L().Warn("ingest: comment fetch failed, keeping post without comments",
					zap.String("submission", src.FullName),
					zap.Error(err),
				)
				failed.Add(1)
				return nil
			}

			rows := make([]model.Comment, 0, len(thread))
			for _, c := range thread {
				if body, ok := cleanBody(c.Body); ok {
					rows = append(rows, model.Comment{
						SubmissionID: src.FullName,
						Subreddit:    src.Subreddit,
						Title:        src.Title,
						Author:       cleanAuthor(c.Author),
						Body:         body,
						Score:        c.Score,
					})
				}
			}

			mu.Lock()
			comments = append(comments, rows...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		zap.L().Warn("ingest: partial comment coverage", zap.Int32("failed_threads", n))
	}
	return posts, comments
}

func toModelPost(p reddit.Post) model.Post {
	return model.Post{
		SubmissionID: p.FullName,
		Subreddit:    p.Subreddit,
		Title:        p.Title,
		Body:         p.Body,
		UpvoteRatio:  p.UpvoteRatio,
		Score:        p.Score,
		CommentCount: p.CommentCount,
		URL:          p.URL,
	}
}

// cleanBody drops placeholder bodies left by moderation or deletion.
func cleanBody(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	switch trimmed {
	case "", "[deleted]", "[removed]":
		return "", false
	}
	return trimmed, true
}

func cleanAuthor(author string) string {
	if strings.TrimSpace(author) == "" || author == "[deleted]" {
		return "Unknown"
	}
	return author
}
