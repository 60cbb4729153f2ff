package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/models"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [resume-dir]",
	Short: "Store and index resume PDFs from a directory, and interviewers from a JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIngest,
}

var ingestInterviewersFile string

func init() {
	ingestCmd.Flags().StringVar(&ingestInterviewersFile, "interviewers", "", "JSON file holding an array of interviewer profiles")
	rootCmd.AddCommand(ingestCmd)
}

type ingestSummary struct {
	success int
	failed  int
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && ingestInterviewersFile == "" {
		return errors.New("nothing to ingest: pass a resume directory and/or --interviewers")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info("🚀 Starting ingestion...")
	var total ingestSummary

	if ingestInterviewersFile != "" {
		raw, err := os.ReadFile(ingestInterviewersFile)
		if err != nil {
			return fmt.Errorf("failed to read interviewers file: %w", err)
		}
		var reqs []models.CreateInterviewerRequest
		if err := json.Unmarshal(raw, &reqs); err != nil {
			return fmt.Errorf("failed to parse interviewers file: %w", err)
		}

		for _, req := range reqs {
			profile, indexed, err := a.interviewers.Create(ctx, req)
			if err != nil {
				log.Error("❌ Failed to create interviewer", zap.String("email", req.Email), zap.Error(err))
				total.failed++
				continue
			}
			log.Info("✅ Interviewer ingested", zap.String("id", profile.ID.String()), zap.String("name", profile.Name), zap.Bool("indexed", indexed))
			total.success++
		}
	}

	if len(args) == 1 {
		err := filepath.WalkDir(args[0], func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
				return nil
			}

			log.Info("📄 Processing resume", zap.String("path", path))
			resume, indexed, err := a.resumes.Ingest(ctx, path)
			if err != nil {
				log.Error("❌ Failed to ingest resume", zap.String("path", path), zap.Error(err))
				total.failed++
				return nil
			}
			log.Info("✅ Resume ingested",
				zap.String("id", resume.ID.String()),
				zap.String("name", resume.Name),
				zap.Bool("indexed", indexed),
			)
			total.success++
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", args[0], err)
		}
	}

	log.Info("📊 Ingestion summary", zap.Int("successful", total.success), zap.Int("failed", total.failed))
	if total.failed > 0 {
		return fmt.Errorf("%d items failed to ingest", total.failed)
	}
	return nil
}
