package sentiment

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/model"
	"github.com/rocksoncodes/market-scout/internal/store"
)

// PostScores holds one post's scored comments.
type PostScores struct {
	SubmissionID string
	Scores       []model.CommentScore
}

// Service runs the sentiment stage: full post scan, per-comment scoring,
// per-post rollup, and persistence of the summaries.
type Service struct {
	store  store.Store
	scorer Scorer
}

// NewService creates the sentiment service.
func NewService(st store.Store, scorer Scorer) *Service {
	return &Service{store: st, scorer: scorer}
}

// Analyze scores every comment of every unsummarized post. Scoring is
// read-only over committed rows, so a failure aborts with an empty result and
// the caller can retry from persisted state on the next run.
func (s *Service) Analyze(ctx context.Context) ([]PostScores, error) {
	posts, err := s.store.AllPosts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "sentiment: query posts")
	}

	// Application-level 1:1 — posts that already have a rollup are skipped.
	existing, err := s.store.SentimentPostIDs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "sentiment: query existing rollups")
	}

	zap.L().Info("sentiment analysis starting", zap.Int("posts", len(posts)))

	var out []PostScores
	totalComments := 0
	for _, post := range posts {
		if _, ok := existing[post.SubmissionID]; ok {
			continue
		}

		comments, err := s.store.CommentsForPost(ctx, post.SubmissionID)
		if err != nil {
			return nil, eris.Wrapf(err, "sentiment: query comments for %s", post.SubmissionID)
		}
		totalComments += len(comments)

		ps := PostScores{SubmissionID: post.SubmissionID}
		for _, c := range comments {
			compound, err := s.scorer.Score(c.Body)
			if err != nil {
				return nil, eris.Wrapf(err, "sentiment: score comment %d", c.ID)
			}
			ps.Scores = append(ps.Scores, model.CommentScore{
				SubmissionID: post.SubmissionID,
				Compound:     compound,
				Label:        Classify(compound),
			})
		}
		out = append(out, ps)
	}

	zap.L().Info("sentiment analysis complete",
		zap.Int("posts_scored", len(out)),
		zap.Int("comments_scored", totalComments),
	)
	return out, nil
}

// Run executes the full stage: analyze, summarize, and persist all rollups in
// one transaction, marking the covered posts processed.
func (s *Service) Run(ctx context.Context) error {
	scored, err := s.Analyze(ctx)
	if err != nil {
		return err
	}
	if len(scored) == 0 {
		zap.L().Info("sentiment stage: nothing to summarize")
		return nil
	}

	sentiments := make([]model.Sentiment, 0, len(scored))
	submissionIDs := make([]string, 0, len(scored))
	for _, ps := range scored {
		sentiments = append(sentiments, model.Sentiment{
			PostID:  ps.SubmissionID,
			Results: Summarize(ps.Scores),
		})
		submissionIDs = append(submissionIDs, ps.SubmissionID)
	}

	err = s.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.InsertSentiments(ctx, sentiments); err != nil {
			return err
		}
		return tx.MarkPostsProcessed(ctx, submissionIDs)
	})
	if err != nil {
		return eris.Wrap(err, "sentiment: store rollups")
	}

	zap.L().Info("sentiment rollups stored", zap.Int("count", len(sentiments)))
	return nil
}
