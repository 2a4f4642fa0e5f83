package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"finrag-orchestrator/internal/domain"
)

const maxSubQuestions = 4

// DecomposeQuestionUsecase splits a compound or comparative question
// into independent single-entity, single-metric sub-questions. The
// context-driven variant supplies sample passages so sub-questions target
// concretely available data.
type DecomposeQuestionUsecase interface {
	Execute(ctx context.Context, question string) ([]string, error)
	ExecuteWithContext(ctx context.Context, question string, samples []domain.Passage) ([]string, error)
}

type decomposeQuestionUsecase struct {
	llm         domain.LLMClient
	prompts     *PromptBuilder
	store       domain.PassageStore
	sampleLimit int
	logger      *slog.Logger
}

// NewDecomposeQuestionUsecase creates a decomposer over the given model.
// The store supplies corpus samples when the caller has no retrieved
// context to steer decomposition with.
func NewDecomposeQuestionUsecase(llm domain.LLMClient, prompts *PromptBuilder, store domain.PassageStore, sampleLimit int, logger *slog.Logger) DecomposeQuestionUsecase {
	return &decomposeQuestionUsecase{
		llm:         llm,
		prompts:     prompts,
		store:       store,
		sampleLimit: sampleLimit,
		logger:      logger,
	}
}

func (u *decomposeQuestionUsecase) Execute(ctx context.Context, question string) ([]string, error) {
	return u.decompose(ctx, question, u.prompts.Decompose(question))
}

func (u *decomposeQuestionUsecase) ExecuteWithContext(ctx context.Context, question string, samples []domain.Passage) ([]string, error) {
	if len(samples) == 0 && u.store != nil {
		corpus, err := u.store.ListSample(ctx, u.sampleLimit)
		if err != nil {
			// Samples only steer the prompt; fall back to blind decomposition.
			u.logger.Warn("corpus_sample_failed", slog.String("error", err.Error()))
		} else {
			samples = corpus
		}
	}
	if len(samples) == 0 {
		return u.Execute(ctx, question)
	}
	return u.decompose(ctx, question, u.prompts.DecomposeWithContext(question, samples))
}

func (u *decomposeQuestionUsecase) decompose(ctx context.Context, question, prompt string) ([]string, error) {
	completion, err := u.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to decompose question: %w", err)
	}

	subQuestions := parseBulletLines(completion)
	if len(subQuestions) > maxSubQuestions {
		subQuestions = subQuestions[:maxSubQuestions]
	}
	if len(subQuestions) == 0 {
		u.logger.Warn("decomposition_empty", slog.String("question", question))
	}

	u.logger.Info("question_decomposed",
		slog.String("question", question),
		slog.Int("sub_questions", len(subQuestions)))
	return subQuestions, nil
}
