package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/pipeline"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the pipeline and cleanup on a schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return eris.Wrap(err, "create scheduler")
		}

		if err := scheduleJobs(ctx, scheduler, env, time.Now()); err != nil {
			return err
		}

		scheduler.Start()
		zap.L().Info("agent started",
			zap.Duration("pipeline_interval", cfg.Schedule.PipelineInterval),
			zap.Duration("cleanup_interval", cfg.Schedule.CleanupInterval),
			zap.Duration("cleanup_offset", cfg.Schedule.CleanupOffset),
		)

		<-ctx.Done()
		zap.L().Info("shutting down agent")

		if err := scheduler.Shutdown(); err != nil {
			return eris.Wrap(err, "shutdown scheduler")
		}
		return nil
	},
}

// scheduleJobs registers the pipeline and cleanup jobs. now anchors the
// cleanup job's delayed first run: cleanup trails the first pipeline pass so
// a fresh report ships before its source threads are deleted.
func scheduleJobs(ctx context.Context, scheduler gocron.Scheduler, env *scoutEnv, now time.Time) error {
	_, err := scheduler.NewJob(
		gocron.DurationJob(cfg.Schedule.PipelineInterval),
		gocron.NewTask(func() {
			results := env.Runner.Run(ctx)
			if pipeline.Failed(results) {
				zap.L().Error("scheduled pipeline pass had failures")
			}
		}),
		gocron.WithName("pipeline"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return eris.Wrap(err, "schedule pipeline job")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Schedule.CleanupInterval),
		gocron.NewTask(func() {
			deleted, err := env.Retention.Cleanup(ctx)
			if err != nil {
				zap.L().Error("scheduled cleanup failed", zap.Error(err))
				return
			}
			zap.L().Info("scheduled cleanup complete", zap.Int("posts_deleted", deleted))
		}),
		gocron.WithName("cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartDateTime(now.Add(cfg.Schedule.CleanupOffset))),
	)
	if err != nil {
		return eris.Wrap(err, "schedule cleanup job")
	}

	return nil
}

func init() {
	rootCmd.AddCommand(agentCmd)
}
