package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/config"
	"alfredoptarigan/cv-matcher/internal/logger"
	"alfredoptarigan/cv-matcher/internal/models"
)

const minOversample = 2

// MatchOptions is captured once at construction and never changes afterwards.
type MatchOptions struct {
	SimilarityThreshold float64
	OversampleFactor    int
	DefaultLimit        int
	MaxLimit            int
	TaskTimeout         time.Duration
	FallbackScore       int
}

func MatchOptionsFromConfig(cfg config.MatchingConfig) MatchOptions {
	return MatchOptions{
		SimilarityThreshold: cfg.SimilarityThreshold,
		OversampleFactor:    cfg.OversampleFactor,
		DefaultLimit:        cfg.DefaultLimit,
		MaxLimit:            cfg.MaxLimit,
		TaskTimeout:         cfg.TaskTimeout,
		FallbackScore:       cfg.FallbackScore,
	}
}

func (o MatchOptions) normalized() MatchOptions {
	if o.OversampleFactor < minOversample {
		o.OversampleFactor = minOversample
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = 10
	}
	if o.DefaultLimit <= 0 || o.DefaultLimit > o.MaxLimit {
		o.DefaultLimit = min(5, o.MaxLimit)
	}
	if o.TaskTimeout <= 0 {
		o.TaskTimeout = 30 * time.Second
	}
	return o
}

type MatchRequest struct {
	Source QuerySource
	// Limit <= 0 means the configured default; larger values are capped.
	Limit    int
	Filter   *models.MetadataFilter
	Template string
	// Vars are merged over the query and candidate variables.
	Vars                 map[string]string
	ScorePolicy          ScorePolicy
	IncludeLowConfidence bool
	SortByScore          bool
}

type MatchResponse struct {
	Result *models.MatchResult
	Err    error
}

type MatchOrchestrator interface {
	Match(ctx context.Context, req MatchRequest) (*models.MatchResult, error)
	// MatchAsync runs Match in the background and delivers exactly one response.
	MatchAsync(ctx context.Context, req MatchRequest) <-chan MatchResponse
}

type taskState string

const (
	taskPending   taskState = "pending"
	taskRunning   taskState = "running"
	taskCompleted taskState = "completed"
	taskTimedOut  taskState = "timed_out"
	taskFailed    taskState = "failed"
)

type taskOutcome struct {
	outcome  models.MatchOutcome
	excluded bool
}

type explainResult struct {
	text string
	err  error
}

type matchOrchestrator struct {
	resolver   QueryResolver
	embedder   EmbeddingGateway
	search     SimilaritySearchGateway
	explainer  ExplanationGenerator
	extractor  *ScoreExtractor
	classifier *MatchStatusClassifier
	pool       WorkerPool
	opts       MatchOptions
	log        *zap.Logger
}

func NewMatchOrchestrator(
	resolver QueryResolver,
	embedder EmbeddingGateway,
	search SimilaritySearchGateway,
	explainer ExplanationGenerator,
	pool WorkerPool,
	opts MatchOptions,
	log *zap.Logger,
) MatchOrchestrator {
	return &matchOrchestrator{
		resolver:   resolver,
		embedder:   embedder,
		search:     search,
		explainer:  explainer,
		extractor:  NewScoreExtractor(),
		classifier: NewMatchStatusClassifier(),
		pool:       pool,
		opts:       opts.normalized(),
		log:        logger.OrNop(log),
	}
}

func (o *matchOrchestrator) MatchAsync(ctx context.Context, req MatchRequest) <-chan MatchResponse {
	ch := make(chan MatchResponse, 1)
	go func() {
		defer close(ch)
		res, err := o.Match(ctx, req)
		ch <- MatchResponse{Result: res, Err: err}
	}()
	return ch
}

func (o *matchOrchestrator) Match(ctx context.Context, req MatchRequest) (*models.MatchResult, error) {
	limit := o.capLimit(req.Limit)
	start := time.Now()

	if !o.search.ExistsAny(ctx) {
		o.log.Warn("⚠️ vector index is empty, skipping match")
		return &models.MatchResult{Results: []models.MatchOutcome{}, StoreEmpty: true}, nil
	}

	query, err := o.resolver.Resolve(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	vector := o.embedder.Embed(ctx, query.Text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := o.search.FindSimilar(ctx, vector, limit*o.opts.OversampleFactor, req.Filter)
	candidates := make([]models.SimilarityResult, 0, len(hits))
	for _, h := range hits {
		if h.Similarity >= o.opts.SimilarityThreshold {
			candidates = append(candidates, h)
		}
	}

	o.log.Info("🔍 candidates above threshold",
		zap.Int("retrieved", len(hits)),
		zap.Int("kept", len(candidates)),
		zap.Float64("threshold", o.opts.SimilarityThreshold),
		zap.Int("limit", limit),
	)

	slots := make([]taskOutcome, len(candidates))
	var wg sync.WaitGroup
	for i, hit := range candidates {
		wg.Add(1)
		go func(i int, hit models.SimilarityResult) {
			defer wg.Done()
			slots[i] = o.evaluate(ctx, hit, query.Vars, req)
		}(i, hit)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := aggregate(slots, limit, req.IncludeLowConfidence, req.SortByScore)
	o.log.Info("✅ match completed",
		zap.Int("results", len(result.Results)),
		zap.Int("strong_match", result.Tiers.StrongMatch),
		zap.Int("match", result.Tiers.Match),
		zap.Int("consider", result.Tiers.Consider),
		zap.Int("excluded", result.Tiers.Excluded),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (o *matchOrchestrator) capLimit(limit int) int {
	if limit <= 0 {
		return o.opts.DefaultLimit
	}
	return min(limit, o.opts.MaxLimit)
}

// evaluate runs one candidate through explain, score and classify. The waiter
// never blocks past the task timeout; a late task result is discarded.
func (o *matchOrchestrator) evaluate(ctx context.Context, hit models.SimilarityResult, queryVars map[string]string, req MatchRequest) taskOutcome {
	c := hit.Candidate
	fields := logger.CandidateFields(c.ID, string(c.Kind), c.Name)
	taskCtx, cancel := context.WithTimeout(ctx, o.opts.TaskTimeout)
	defer cancel()

	o.log.Debug("task state", append(fields, zap.String("state", string(taskPending)))...)

	done := make(chan explainResult, 1)
	err := o.pool.Submit(taskCtx, func(jobCtx context.Context) {
		// the pool recovers panics too, but the waiter must hear about them now
		defer func() {
			if r := recover(); r != nil {
				done <- explainResult{err: fmt.Errorf("explanation panicked: %v", r)}
			}
		}()
		o.log.Debug("task state", append(fields, zap.String("state", string(taskRunning)))...)
		text, err := o.explainer.Explain(jobCtx, ExplanationRequest{
			Template:  req.Template,
			Vars:      mergeVars(queryVars, CandidateVars(hit), req.Vars),
			Candidate: c,
		})
		done <- explainResult{text: text, err: err}
	})
	if err != nil {
		o.log.Warn("⚠️ could not schedule candidate", append(fields, zap.Error(err))...)
		if errors.Is(err, context.DeadlineExceeded) {
			return o.fallback(hit, taskTimedOut, err)
		}
		return o.fallback(hit, taskFailed, err)
	}

	select {
	case r := <-done:
		switch {
		case errors.Is(r.err, ErrCandidateExcluded):
			o.log.Debug("task state", append(fields, zap.String("state", string(taskCompleted)), zap.Bool("excluded", true))...)
			return taskOutcome{excluded: true}
		case r.err != nil && taskCtx.Err() != nil:
			return o.fallback(hit, taskTimedOut, r.err)
		case r.err != nil:
			return o.fallback(hit, taskFailed, r.err)
		}
		score := o.extractor.ScoreOrDefault(r.text, req.ScorePolicy)
		status := o.classifier.Classify(r.text, score)
		o.log.Debug("task state", append(fields,
			zap.String("state", string(taskCompleted)),
			zap.Int("score", score),
			zap.String("status", string(status)),
		)...)
		return taskOutcome{outcome: models.NewMatchOutcome(hit, score, r.text, status)}
	case <-taskCtx.Done():
		return o.fallback(hit, taskTimedOut, taskCtx.Err())
	}
}

func (o *matchOrchestrator) fallback(hit models.SimilarityResult, state taskState, cause error) taskOutcome {
	c := hit.Candidate
	o.log.Warn("⚠️ candidate analysis fell back", append(logger.CandidateFields(c.ID, string(c.Kind), c.Name),
		zap.String("state", string(state)),
		zap.Error(cause),
	)...)
	explanation := fmt.Sprintf("AI analysis unavailable: %v. Final Match Score: %d%%", cause, o.opts.FallbackScore)
	if state == taskTimedOut {
		explanation = fmt.Sprintf("AI analysis timed out after %s; the AI service took too long to respond. Final Match Score: %d%%",
			o.opts.TaskTimeout, o.opts.FallbackScore)
	}
	return taskOutcome{outcome: models.NewMatchOutcome(hit, clampScore(o.opts.FallbackScore), explanation, models.StatusConsider)}
}

// aggregate fills STRONG_MATCH first, then MATCH, then CONSIDER when asked
// for. Tier counts cover every evaluated candidate, not only those returned.
func aggregate(slots []taskOutcome, limit int, includeLow, sortByScore bool) *models.MatchResult {
	groups := make([][]models.MatchOutcome, models.StatusStrongMatch.Rank()+1)
	var tiers models.TierCounts

	for _, s := range slots {
		if s.excluded {
			tiers.Excluded++
			continue
		}
		// unknown statuses rank 0 and are treated as CONSIDER
		rank := max(s.outcome.MatchStatus.Rank(), models.StatusConsider.Rank())
		groups[rank] = append(groups[rank], s.outcome)
		switch rank {
		case models.StatusStrongMatch.Rank():
			tiers.StrongMatch++
		case models.StatusMatch.Rank():
			tiers.Match++
		default:
			tiers.Consider++
		}
	}

	floor := models.StatusMatch.Rank()
	if includeLow {
		floor = models.StatusConsider.Rank()
	}

	results := make([]models.MatchOutcome, 0, limit)
	for rank := len(groups) - 1; rank >= floor && len(results) < limit; rank-- {
		g := groups[rank]
		if sortByScore {
			sort.SliceStable(g, func(i, j int) bool { return g[i].MatchScore > g[j].MatchScore })
		}
		for _, o := range g {
			if len(results) == limit {
				break
			}
			results = append(results, o)
		}
	}

	return &models.MatchResult{Results: results, Tiers: tiers}
}
