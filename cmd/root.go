package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "market-scout",
	Short: "Reddit problem discovery pipeline",
	Long:  "Ingests traction-filtered Reddit threads, scores comment sentiment, synthesizes a problem report via Claude, publishes to Notion and email.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
