package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full pipeline pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results := env.Runner.Run(ctx)

		for _, r := range results {
			if r.Err != nil {
				zap.L().Error("stage failed",
					zap.String("stage", r.Name),
					zap.Duration("duration", r.Duration),
					zap.Error(r.Err),
				)
			} else {
				zap.L().Info("stage complete",
					zap.String("stage", r.Name),
					zap.Duration("duration", r.Duration),
				)
			}
		}

		if pipeline.Failed(results) {
			return eris.New("pipeline completed with failures")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
