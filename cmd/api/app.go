package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/cv-matcher/internal/cache"
	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/models"
	"alfredoptarigan/cv-matcher/internal/repositories"
	"alfredoptarigan/cv-matcher/internal/services"
)

// application holds everything the commands share. Close releases it in
// reverse order of construction.
type application struct {
	db    *gorm.DB
	redis *cache.Redis
	pool  services.WorkerPool

	resumeRepo      repositories.ResumeRepository
	interviewerRepo repositories.InterviewerRepository
	evaluationRepo  repositories.EvaluationRepository

	storage             services.StorageService
	sync                services.IndexSyncService
	resumes             services.ResumeService
	interviewers        services.InterviewerService
	interviewerMatching services.InterviewerMatchingService
	resumeMatching      services.ResumeMatchingService
	generator           services.GeneratorService

	closers []func()
}

func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger) (*application, error) {
	a := &application{}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	a.resumeRepo = repositories.NewResumeRepository(db)
	a.interviewerRepo = repositories.NewInterviewerRepository(db)
	a.evaluationRepo = repositories.NewEvaluationRepository(db)
	log.Info("✅ Repositories initialized successfully")

	a.redis = cache.NewRedis(cfg.Redis, log)
	a.closers = append(a.closers, func() { _ = a.redis.Close() })

	a.storage = services.NewStorageService(cfg.Storage.UploadPath)
	if err := a.storage.EnsureUploadDir(); err != nil {
		a.Close()
		return nil, err
	}

	gemini, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		EmbedModel: cfg.Gemini.EmbedModel,
		Dimension:  cfg.Embedding.Dimension,
	}, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info("✅ Gemini AI initialized successfully")

	retry := services.RetryPolicy{
		MaxAttempts: cfg.Worker.RetryMaxAttempts,
		BaseDelay:   cfg.Worker.RetryInitialDelay,
		MaxDelay:    cfg.Worker.RetryMaxDelay,
		Multiplier:  2,
	}
	embedder := services.NewEmbeddingGateway(gemini, cfg.Embedding.Dimension, retry, log)

	// collections are sized from the gateway so stored vectors always fit
	indexes, err := a.buildIndexes(ctx, cfg, embedder.Dimension(), log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.sync = services.NewIndexSyncService(a.interviewerRepo, a.resumeRepo, embedder, indexes, a.redis, cfg.Redis.LockTTL, log)
	a.resumes = services.NewResumeService(a.resumeRepo, a.storage, services.NewPDFParserService(log), a.sync, log)
	interviewerSearch := services.NewSimilaritySearchGateway(indexes[models.KindInterviewer], log)
	a.interviewers = services.NewInterviewerService(a.interviewerRepo, a.sync, embedder, interviewerSearch, log)

	a.pool = services.NewWorkerPool(services.PoolOptions{
		CoreWorkers: cfg.Worker.CoreWorkers,
		MaxWorkers:  cfg.Worker.MaxWorkers,
		QueueSize:   cfg.Worker.QueueSize,
	}, log)
	a.pool.Start(ctx)
	a.closers = append(a.closers, a.pool.Stop)

	explainer := services.NewExplanationGenerator(gemini, retry, services.ExplanationOptions{
		Temperature:   cfg.Gemini.Temperature,
		FallbackScore: cfg.Matching.FallbackScore,
	}, log)
	resolver := services.NewQueryResolver(a.resumeRepo, a.evaluationRepo)
	opts := services.MatchOptionsFromConfig(cfg.Matching)
	prompts := services.NewPromptBuilder()

	interviewerOrch := services.NewMatchOrchestrator(
		resolver, embedder,
		interviewerSearch,
		explainer, a.pool, opts,
		log.With(zap.String("index", string(models.KindInterviewer))),
	)
	resumeOrch := services.NewMatchOrchestrator(
		resolver, embedder,
		services.NewSimilaritySearchGateway(indexes[models.KindResume], log),
		explainer, a.pool, opts,
		log.With(zap.String("index", string(models.KindResume))),
	)

	a.interviewerMatching = services.NewInterviewerMatchingService(
		interviewerOrch, prompts, a.interviewerRepo, a.resumeRepo,
		services.ScorePolicy{Default: cfg.Matching.InterviewerDefaultScore},
		cfg.Worker.BatchConcurrency, log,
	)
	a.resumeMatching = services.NewResumeMatchingService(
		resumeOrch, prompts, a.evaluationRepo,
		services.ScorePolicy{Default: cfg.Matching.ResumeDefaultScore}, log,
	)
	a.generator = services.NewGeneratorService(gemini, prompts, retry, cfg.Gemini.Temperature, log)
	log.Info("✅ Services initialized successfully")

	return a, nil
}

func (a *application) buildIndexes(ctx context.Context, cfg *config.Config, dimension int, log *zap.Logger) (map[models.CandidateKind]services.VectorIndex, error) {
	indexes := make(map[models.CandidateKind]services.VectorIndex, 2)

	switch cfg.VectorStore.Backend {
	case config.BackendPgvector:
		repo := repositories.NewVectorStoreRepository(a.db)
		indexes[models.KindInterviewer] = services.NewPgvectorIndex(repo, models.KindInterviewer, log)
		indexes[models.KindResume] = services.NewPgvectorIndex(repo, models.KindResume, log)
	default:
		client, err := services.NewQdrantClient(cfg.Qdrant.URL, cfg.Qdrant.APIKey)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		indexes[models.KindInterviewer] = services.NewQdrantIndex(client, cfg.Qdrant.CollectionPrefix+"_interviewers", dimension, log)
		indexes[models.KindResume] = services.NewQdrantIndex(client, cfg.Qdrant.CollectionPrefix+"_resumes", dimension, log)
	}

	for kind, idx := range indexes {
		if err := idx.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize %s index: %w", kind, err)
		}
	}
	log.Info("✅ Vector indexes initialized", zap.String("backend", cfg.VectorStore.Backend))
	return indexes, nil
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
