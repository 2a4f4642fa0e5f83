package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"finrag-orchestrator/internal/domain"
)

// FallbackAnswerUsecase answers a sub-question and, when the first
// attempt is insufficient, retries with model-generated reformulations.
// Per invocation it issues at most 1 + maxAlternatives answer attempts.
type FallbackAnswerUsecase interface {
	Execute(ctx context.Context, input AnswerSubQuestionInput) (*domain.SubQuestionAnswer, error)
}

type fallbackAnswerUsecase struct {
	answerer        AnswerSubQuestionUsecase
	llm             domain.LLMClient
	prompts         *PromptBuilder
	maxAlternatives int
	logger          *slog.Logger
}

// NewFallbackAnswerUsecase wraps an answerer with bounded reformulation
// retries.
func NewFallbackAnswerUsecase(
	answerer AnswerSubQuestionUsecase,
	llm domain.LLMClient,
	prompts *PromptBuilder,
	maxAlternatives int,
	logger *slog.Logger,
) FallbackAnswerUsecase {
	return &fallbackAnswerUsecase{
		answerer:        answerer,
		llm:             llm,
		prompts:         prompts,
		maxAlternatives: maxAlternatives,
		logger:          logger,
	}
}

func (u *fallbackAnswerUsecase) Execute(ctx context.Context, input AnswerSubQuestionInput) (*domain.SubQuestionAnswer, error) {
	original, err := u.answerer.Execute(ctx, input)
	if err != nil {
		return nil, err
	}
	if !original.Insufficient() {
		return original, nil
	}

	alternatives, err := u.generateAlternatives(ctx, input.Question)
	if err != nil {
		return nil, err
	}
	if len(alternatives) == 0 {
		u.logger.Warn("no_alternatives_generated", slog.String("question", input.Question))
		return original, nil
	}

	u.logger.Info("fallback_attempted",
		slog.String("question", input.Question),
		slog.Int("alternatives", len(alternatives)))

	// Alternatives are independent, so they run concurrently; the winner
	// is still chosen in production order for reproducible results.
	results := make([]*domain.SubQuestionAnswer, len(alternatives))
	g, gctx := errgroup.WithContext(ctx)
	for i, alt := range alternatives {
		i, alt := i, alt
		g.Go(func() error {
			res, err := u.answerer.Execute(gctx, AnswerSubQuestionInput{
				Question:   alt,
				TargetYear: input.TargetYear,
			})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, res := range results {
		if res.Insufficient() {
			continue
		}
		// Record which phrasing succeeded for debugging and synthesis.
		annotated := *res
		annotated.Question = fmt.Sprintf("%s (tried alternative: %s)", input.Question, alternatives[i])
		u.logger.Info("fallback_succeeded",
			slog.String("question", input.Question),
			slog.String("alternative", alternatives[i]))
		return &annotated, nil
	}

	u.logger.Info("fallback_exhausted", slog.String("question", input.Question))
	return original, nil
}

func (u *fallbackAnswerUsecase) generateAlternatives(ctx context.Context, question string) ([]string, error) {
	completion, err := u.llm.Complete(ctx, u.prompts.Alternatives(question, u.maxAlternatives))
	if err != nil {
		return nil, fmt.Errorf("failed to generate alternative questions: %w", err)
	}
	alternatives := parseBulletLines(completion)
	if len(alternatives) > u.maxAlternatives {
		alternatives = alternatives[:u.maxAlternatives]
	}
	return alternatives, nil
}
