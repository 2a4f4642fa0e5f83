package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"finrag-orchestrator/internal/domain"
)

// ProgressStage identifies a completed orchestration step.
type ProgressStage string

const (
	StageMainAnswered       ProgressStage = "main_answered"
	StageGapsIdentified     ProgressStage = "gaps_identified"
	StageFollowUpAnswered   ProgressStage = "follow_up_answered"
	StageSynthesisCompleted ProgressStage = "synthesis_completed"
)

// ProgressEvent reports one completed step for incremental UI updates.
type ProgressEvent struct {
	Stage  ProgressStage
	Detail string
}

// ProgressFunc receives progress events. Implementations must return
// quickly and must not mutate orchestration state.
type ProgressFunc func(ProgressEvent)

// AnswerQuestionInput is one end-to-end question with an optional
// progress callback.
type AnswerQuestionInput struct {
	Question   string
	OnProgress ProgressFunc
}

// AnswerQuestionUsecase is the orchestrator: main answer with fallback,
// gap analysis, bounded follow-ups, synthesis. Transport failures abort
// the whole query; no partially synthesized answer escapes.
type AnswerQuestionUsecase interface {
	Execute(ctx context.Context, input AnswerQuestionInput) (*domain.FinalAnswer, error)
}

// OrchestratorConfig bounds the pipeline.
type OrchestratorConfig struct {
	// MaxFollowUps caps the follow-up questions taken from gap analysis.
	MaxFollowUps int
	// FollowUpConcurrency bounds the worker pool answering follow-ups.
	FollowUpConcurrency int
	// YearMin and YearMax restrict target-year extraction to plausible
	// report years.
	YearMin int
	YearMax int
}

type answerQuestionUsecase struct {
	fallback    FallbackAnswerUsecase
	gaps        AnalyzeGapsUsecase
	decomposer  DecomposeQuestionUsecase
	synthesizer SynthesizeAnswerUsecase
	cfg         OrchestratorConfig
	cache       *expirable.LRU[string, domain.FinalAnswer]
	logger      *slog.Logger
}

// Option customizes the orchestrator.
type Option func(*answerQuestionUsecase)

// WithAnswerCache enables an expirable LRU over final answers keyed by
// question text.
func WithAnswerCache(size int, ttl time.Duration) Option {
	return func(u *answerQuestionUsecase) {
		if size > 0 {
			u.cache = expirable.NewLRU[string, domain.FinalAnswer](size, nil, ttl)
		}
	}
}

// NewAnswerQuestionUsecase wires the end-to-end answer pipeline.
func NewAnswerQuestionUsecase(
	fallback FallbackAnswerUsecase,
	gaps AnalyzeGapsUsecase,
	decomposer DecomposeQuestionUsecase,
	synthesizer SynthesizeAnswerUsecase,
	cfg OrchestratorConfig,
	logger *slog.Logger,
	opts ...Option,
) AnswerQuestionUsecase {
	u := &answerQuestionUsecase{
		fallback:    fallback,
		gaps:        gaps,
		decomposer:  decomposer,
		synthesizer: synthesizer,
		cfg:         cfg,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *answerQuestionUsecase) Execute(ctx context.Context, input AnswerQuestionInput) (*domain.FinalAnswer, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	if u.cache != nil {
		if cached, ok := u.cache.Get(question); ok {
			u.logger.Info("answer_cache_hit", slog.String("question", question))
			return &cached, nil
		}
	}

	runID := uuid.NewString()
	logger := u.logger.With(slog.String("run_id", runID))
	targetYear := domain.ExtractTargetYear(question, u.cfg.YearMin, u.cfg.YearMax)
	logger.Info("answer_run_started",
		slog.String("question", question),
		slog.Int("target_year", targetYear))

	main, err := u.fallback.Execute(ctx, AnswerSubQuestionInput{Question: question, TargetYear: targetYear})
	if err != nil {
		return nil, fmt.Errorf("main question failed: %w", err)
	}
	notify(input.OnProgress, ProgressEvent{Stage: StageMainAnswered, Detail: main.Question})

	followUps, err := u.planFollowUps(ctx, question, main, logger)
	if err != nil {
		return nil, err
	}
	notify(input.OnProgress, ProgressEvent{Stage: StageGapsIdentified, Detail: fmt.Sprintf("%d follow-up questions", len(followUps))})

	results, err := u.answerFollowUps(ctx, followUps, targetYear)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		notify(input.OnProgress, ProgressEvent{Stage: StageFollowUpAnswered, Detail: res.Question})
	}

	all := make([]domain.SubQuestionAnswer, 0, 1+len(results))
	all = append(all, *main)
	for _, res := range results {
		all = append(all, *res)
	}

	final, err := u.synthesizer.Execute(ctx, question, all)
	if err != nil {
		return nil, err
	}
	notify(input.OnProgress, ProgressEvent{Stage: StageSynthesisCompleted})

	if u.cache != nil {
		u.cache.Add(question, *final)
	}
	logger.Info("answer_run_completed",
		slog.Int("follow_ups", len(results)),
		slog.Int("citations", len(final.Citations)))
	return final, nil
}

// planFollowUps takes gap-analysis questions first; when the main answer
// is insufficient and gap analysis proposed nothing, context-driven
// decomposition over the main retrieval supplies follow-ups instead.
func (u *answerQuestionUsecase) planFollowUps(ctx context.Context, question string, main *domain.SubQuestionAnswer, logger *slog.Logger) ([]string, error) {
	analysis, err := u.gaps.Execute(ctx, question, main.AnswerText, main.SourcePassages)
	if err != nil {
		return nil, err
	}

	followUps := analysis.FollowUpQuestions
	if len(followUps) == 0 && main.Insufficient() {
		followUps, err = u.decomposer.ExecuteWithContext(ctx, question, main.SourcePassages)
		if err != nil {
			return nil, err
		}
		logger.Info("follow_ups_from_decomposition", slog.Int("count", len(followUps)))
	}

	if len(followUps) > u.cfg.MaxFollowUps {
		followUps = followUps[:u.cfg.MaxFollowUps]
	}
	return followUps, nil
}

// answerFollowUps evaluates independent follow-ups concurrently with a
// bounded pool, keeping results in question order so synthesis input is
// reproducible. Any failure cancels the rest and discards partial work.
func (u *answerQuestionUsecase) answerFollowUps(ctx context.Context, followUps []string, targetYear int) ([]*domain.SubQuestionAnswer, error) {
	if len(followUps) == 0 {
		return nil, nil
	}

	results := make([]*domain.SubQuestionAnswer, len(followUps))
	g, gctx := errgroup.WithContext(ctx)
	if u.cfg.FollowUpConcurrency > 0 {
		g.SetLimit(u.cfg.FollowUpConcurrency)
	}
	for i, q := range followUps {
		i, q := i, q
		g.Go(func() error {
			res, err := u.fallback.Execute(gctx, AnswerSubQuestionInput{Question: q, TargetYear: targetYear})
			if err != nil {
				return fmt.Errorf("follow-up %q failed: %w", q, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func notify(fn ProgressFunc, event ProgressEvent) {
	if fn != nil {
		fn(event)
	}
}
