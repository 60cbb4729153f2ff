package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/logger"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "cv-matcher",
	Short:         "Match interviewers and resumes with embeddings and an LLM",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = config.Load()

		flags := cmd.Flags()
		if flags.Changed("debug") {
			cfg.Log.Debug, _ = flags.GetBool("debug")
		}
		if flags.Changed("json") {
			cfg.Log.JSON, _ = flags.GetBool("json")
		}
		if flags.Changed("backend") {
			cfg.VectorStore.Backend, _ = flags.GetString("backend")
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		log = l
		log.Info("✅ Config loaded successfully",
			zap.String("env", cfg.Server.Env),
			zap.String("vector_backend", cfg.VectorStore.Backend),
		)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output (overrides LOG_DEBUG)")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging (overrides LOG_JSON)")
	rootCmd.PersistentFlags().String("backend", "", "vector backend: qdrant or pgvector (overrides VECTOR_BACKEND)")
}
