// Package curator implements the curate stage: a tool-calling generation pass
// over scored posts, committed as one atomic curation transition.
package curator

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/model"
	"github.com/rocksoncodes/market-scout/internal/store"
	"github.com/rocksoncodes/market-scout/pkg/anthropic"
)

const defaultBatchSize = 10

// DefaultObjective is the curation instruction handed to the model. Config
// can override it.
const DefaultObjective = `You are a market scout agent.

Your ingress comes directly from the database through the query_posts_with_sentiments tool.

Each record returned by that tool includes:
- Post Number
- Title
- Body
- Subreddit
- Sentiment Score (counts, average compound, dominant sentiment)

Your workflow:

1. Call the query_posts_with_sentiments tool to retrieve all posts and their associated sentiment summaries.

2. Group the retrieved posts by subreddit for contextual analysis.

3. For each post:
   - Interpret the sentiment data to understand audience tone and emotional intensity.
   - Identify whether the discussion highlights a common or critical market problem.

4. For each post, return a problem statement:
   "X people face Y problem so build Z solution for W results."

5. Accompany each with a sentiment statement:
   "Sentiment statement: Sentiment towards [X: Entity/Topic] is predominantly [Y: Sentiment Label], with users [Z: Key themes, opinions, or concerns drawn from the discussion]."

Output:
- Return the problem statements and their sentiment statements.`

// Config holds the curate stage tunables.
type Config struct {
	Model     string
	MaxTokens int64
	BatchSize int
	Objective string
}

// Service runs the curate stage.
type Service struct {
	store store.Store
	gen   anthropic.Client
	cfg   Config
}

// NewService creates the curator.
func NewService(st store.Store, gen anthropic.Client, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Objective == "" {
		cfg.Objective = DefaultObjective
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Service{store: st, gen: gen, cfg: cfg}
}

// record is the tool-facing shape of one scored post.
type record struct {
	PostNumber     int64         `json:"post_number"`
	Subreddit      string        `json:"subreddit"`
	Title          string        `json:"title"`
	Body           string        `json:"body"`
	SentimentScore model.Summary `json:"sentiment_score"`
}

// Run curates one batch. The tool callback re-reads committed rows only, so
// generation holds no transaction open; the brief and every curation marking
// commit together afterwards, or not at all.
func (s *Service) Run(ctx context.Context) error {
	batch, err := s.store.PostsWithSentiment(ctx, s.cfg.BatchSize)
	if err != nil {
		return eris.Wrap(err, "curator: query batch")
	}
	if len(batch) == 0 {
		zap.L().Info("curator: nothing to curate")
		return nil
	}

	resp, err := s.gen.Generate(ctx, anthropic.GenerateRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		Prompt:    s.cfg.Objective,
		Tools:     []anthropic.Tool{s.queryTool()},
	})
	switch {
	case errors.Is(err, anthropic.ErrServerUnavailable):
		zap.L().Error("curator: model temporarily unavailable", zap.Error(err))
		return err
	case errors.Is(err, anthropic.ErrQuotaExhausted):
		zap.L().Error("curator: quota exhausted, try again after reset", zap.Error(err))
		return err
	case err != nil:
		return eris.Wrap(err, "curator: generate brief")
	}
	resp.Usage.LogCost(s.cfg.Model, "curate")

	if resp.Text == "" {
		zap.L().Warn("curator: model returned empty brief, skipping store")
		return nil
	}

	postIDs := make([]int64, 0, len(batch))
	submissionIDs := make([]string, 0, len(batch))
	for _, item := range batch {
		postIDs = append(postIDs, item.Post.ID)
		submissionIDs = append(submissionIDs, item.Post.SubmissionID)
	}

	err = s.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.InsertBrief(ctx, resp.Text); err != nil {
			return err
		}
		if err := tx.MarkPostsCurated(ctx, postIDs); err != nil {
			return err
		}
		if err := tx.MarkSentimentsCurated(ctx, submissionIDs); err != nil {
			return err
		}
		return tx.UpsertCuratedItems(ctx, submissionIDs)
	})
	if err != nil {
		return eris.Wrap(err, "curator: store curation")
	}

	zap.L().Info("curation stored",
		zap.Int("posts", len(postIDs)),
		zap.Int("tool_calls", resp.ToolCalls),
	)
	return nil
}

// queryTool exposes the scored-post batch to the model. It re-runs the same
// read the stage started from; reads are autocommit, so this is safe to call
// mid-generation any number of times.
func (s *Service) queryTool() anthropic.Tool {
	return anthropic.Tool{
		Name:        "query_posts_with_sentiments",
		Description: "Retrieve posts awaiting curation together with their sentiment summaries. Each record contains post_number, subreddit, title, body, and sentiment_score.",
		Properties:  map[string]any{},
		Invoke: func(ctx context.Context, _ json.RawMessage) (string, error) {
			batch, err := s.store.PostsWithSentiment(ctx, s.cfg.BatchSize)
			if err != nil {
				return "", eris.Wrap(err, "curator: tool query")
			}
			records := make([]record, 0, len(batch))
			for _, item := range batch {
				records = append(records, record{
					PostNumber:     item.Post.ID,
					Subreddit:      item.Post.Subreddit,
					Title:          item.Post.Title,
					Body:           item.Post.Body,
					SentimentScore: item.Summary,
				})
			}
			out, err := json.Marshal(records)
			if err != nil {
				return "", eris.Wrap(err, "curator: encode records")
			}
			return string(out), nil
		},
	}
}
