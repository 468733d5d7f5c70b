package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete curated threads and clear the curated ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		deleted, err := env.Retention.Cleanup(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("cleanup complete", zap.Int("posts_deleted", deleted))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
