package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carebridge/oncorisk/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "oncorisk",
	Short: "Clinical cancer-risk inference service",
	Long:  "Serves calibrated cancer-risk predictions: reproduces the training-time preprocessing, scores pre-fit models, stratifies risk tiers, ranks feature attributions, and attaches rule-based clinical guidance.",
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
