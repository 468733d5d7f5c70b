package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/curator"
	"github.com/rocksoncodes/market-scout/internal/egress"
	"github.com/rocksoncodes/market-scout/internal/ingest"
	"github.com/rocksoncodes/market-scout/internal/pipeline"
	"github.com/rocksoncodes/market-scout/internal/retention"
	"github.com/rocksoncodes/market-scout/internal/sentiment"
	"github.com/rocksoncodes/market-scout/internal/store"
	anthropicpkg "github.com/rocksoncodes/market-scout/pkg/anthropic"
	"github.com/rocksoncodes/market-scout/pkg/mail"
	"github.com/rocksoncodes/market-scout/pkg/notion"
	"github.com/rocksoncodes/market-scout/pkg/reddit"
)

// scoutEnv holds the initialized store, the staged pipeline, and the
// retention service used by the run/agent/cleanup commands.
type scoutEnv struct {
	Store     store.Store
	Runner    *pipeline.Runner
	Retention *retention.Service
}

// Close releases resources held by the environment.
func (se *scoutEnv) Close() {
	if se.Store != nil {
		_ = se.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "market_scout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store, all API clients, and the four pipeline stages.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*scoutEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	redditClient := reddit.NewClient(reddit.WithUserAgent(cfg.Reddit.UserAgent))
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	ingestSvc := ingest.NewService(st, redditClient, ingest.Config{
		Subreddits:       cfg.Reddit.Subreddits,
		PostLimit:        cfg.Reddit.PostLimit,
		CommentLimit:     cfg.Reddit.CommentLimit,
		MinComments:      cfg.Reddit.MinComments,
		MinScore:         cfg.Reddit.MinScore,
		MinUpvoteRatio:   cfg.Reddit.MinUpvoteRatio,
		FetchConcurrency: cfg.Reddit.FetchConcurrency,
	})
	sentimentSvc := sentiment.NewService(st, sentiment.NewLexiconScorer())
	curatorSvc := curator.NewService(st, anthropicClient, curator.Config{
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		BatchSize: cfg.Curator.BatchSize,
		Objective: cfg.Curator.Objective,
	})

	egressSvc, err := initEgress(st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	runner := pipeline.NewRunner(
		pipeline.Stage{Name: "ingress", Run: ingestSvc.Run},
		pipeline.Stage{Name: "sentiment", Run: sentimentSvc.Run},
		pipeline.Stage{Name: "curate", Run: curatorSvc.Run},
		pipeline.Stage{Name: "egress", Run: egressSvc.Run},
	)

	return &scoutEnv{
		Store:     st,
		Runner:    runner,
		Retention: retention.NewService(st),
	}, nil
}

// initEgress builds the publishers for the configured channel.
func initEgress(st store.Store) (*egress.Service, error) {
	channel, err := egress.ParseChannel(cfg.Egress.Channel)
	if err != nil {
		return nil, err
	}

	var publishers []egress.Publisher

	if channel == egress.ChannelNotion || channel == egress.ChannelAll {
		notionClient := notion.NewClient(cfg.Notion.Token)
		publishers = append(publishers, egress.NewNotionPublisher(notionClient, cfg.Notion.ParentPageID))
	}

	if channel == egress.ChannelEmail || channel == egress.ChannelAll {
		sender, err := mail.NewSender(mail.Config{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
		})
		if err != nil {
			return nil, eris.Wrap(err, "init mail sender")
		}
		publishers = append(publishers, egress.NewEmailPublisher(sender, cfg.Email.From, cfg.Email.Recipients))
	}

	zap.L().Info("egress configured",
		zap.String("channel", string(channel)),
		zap.Int("publishers", len(publishers)),
	)

	return egress.NewService(st, channel, publishers...), nil
}
