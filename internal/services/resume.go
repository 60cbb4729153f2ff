package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
)

type ResumeService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*models.Resume, bool, error)
	// Ingest stores and indexes a resume PDF already on local disk.
	Ingest(ctx context.Context, path string) (*models.Resume, bool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Resume, error)
}

type resumeService struct {
	repo    repositories.ResumeRepository
	storage StorageService
	parser  PDFParserService
	sync    IndexSyncService
	log     *zap.Logger
}

func NewResumeService(repo repositories.ResumeRepository, storage StorageService, parser PDFParserService, sync IndexSyncService, log *zap.Logger) ResumeService {
	return &resumeService{
		repo:    repo,
		storage: storage,
		parser:  parser,
		sync:    sync,
		log:     logger.OrNop(log),
	}
}

func (s *resumeService) Upload(ctx context.Context, file *multipart.FileHeader) (*models.Resume, bool, error) {
	filename, filePath, err := s.storage.SaveFile(file, "resume")
	if err != nil {
		return nil, false, err
	}
	return s.store(ctx, filename, filePath, file.Filename)
}

func (s *resumeService) Ingest(ctx context.Context, path string) (*models.Resume, bool, error) {
	filename, filePath, err := s.storage.SaveFromPath(path, "resume")
	if err != nil {
		return nil, false, err
	}
	return s.store(ctx, filename, filePath, filepath.Base(path))
}

func (s *resumeService) Get(ctx context.Context, id uuid.UUID) (*models.Resume, error) {
	resume, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return resume, nil
}

func (s *resumeService) store(ctx context.Context, filename, filePath, originalName string) (*models.Resume, bool, error) {
	parsed, err := s.parser.ParseResume(filePath)
	if err != nil {
		if delErr := s.storage.DeleteFile(filename); delErr != nil {
			s.log.Warn("⚠️ failed to clean up unreadable upload", zap.String("file", filename), zap.Error(delErr))
		}
		return nil, false, fmt.Errorf("failed to parse resume: %w", err)
	}

	resume := &models.Resume{
		Name:             parsed.Name,
		Email:            parsed.Email,
		PhoneNumber:      parsed.PhoneNumber,
		FullText:         parsed.Text,
		Skills:           datatypes.JSONSlice[string](parsed.Skills),
		ExperienceYears:  parsed.ExperienceYears,
		Filename:         filename,
		OriginalFileName: originalName,
		FilePath:         filePath,
	}
	if err := s.repo.Create(ctx, resume); err != nil {
		return nil, false, err
	}

	indexed := true
	if err := s.sync.IndexResume(ctx, resume); err != nil {
		indexed = false
		s.log.Warn("⚠️ resume saved but not indexed", append(logger.CandidateFields(resume.ID.String(), string(models.KindResume), resume.Name), zap.Error(err))...)
	}

	s.log.Info("✅ Resume stored",
		zap.String("id", resume.ID.String()),
		zap.String("original_name", originalName),
		zap.Int("pages", parsed.PageCount),
		zap.Bool("indexed", indexed),
	)
	return resume, indexed, nil
}
