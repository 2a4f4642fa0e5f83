package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finrag-orchestrator/internal/domain"
)

// AnswerSubQuestionInput is one focused question plus the target year
// governing temporal retrieval (domain.YearUnknown for none).
type AnswerSubQuestionInput struct {
	Question   string
	TargetYear int
}

// AnswerSubQuestionUsecase answers one focused question from retrieved
// passages. Empty retrieval yields an insufficient answer, not an error;
// language model failures propagate as errors so the insufficiency status
// keeps meaning "attempted but not found".
type AnswerSubQuestionUsecase interface {
	Execute(ctx context.Context, input AnswerSubQuestionInput) (*domain.SubQuestionAnswer, error)
}

type answerSubQuestionUsecase struct {
	retrieve RetrievePassagesUsecase
	prompts  *PromptBuilder
	llm      domain.LLMClient
	parser   AnswerParser
	logger   *slog.Logger
}

// NewAnswerSubQuestionUsecase wires the sub-question answerer.
func NewAnswerSubQuestionUsecase(
	retrieve RetrievePassagesUsecase,
	prompts *PromptBuilder,
	llm domain.LLMClient,
	parser AnswerParser,
	logger *slog.Logger,
) AnswerSubQuestionUsecase {
	return &answerSubQuestionUsecase{
		retrieve: retrieve,
		prompts:  prompts,
		llm:      llm,
		parser:   parser,
		logger:   logger,
	}
}

func (u *answerSubQuestionUsecase) Execute(ctx context.Context, input AnswerSubQuestionInput) (*domain.SubQuestionAnswer, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	retrieved, err := u.retrieve.Execute(ctx, RetrievePassagesInput{
		Query:      question,
		TargetYear: input.TargetYear,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval failed for sub-question: %w", err)
	}

	if len(retrieved.Passages) == 0 {
		u.logger.Info("sub_question_retrieval_empty", slog.String("question", question))
		return &domain.SubQuestionAnswer{
			Question:   question,
			AnswerText: u.prompts.InsufficiencyMarker(),
			Status:     domain.StatusInsufficient,
		}, nil
	}

	prompt := u.prompts.SubQuestion(question, retrieved.Passages)
	completion, err := u.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm completion failed for sub-question: %w", err)
	}

	status, text, citations := u.parser.Parse(completion, retrieved.Passages)
	u.logger.Info("sub_question_answered",
		slog.String("question", question),
		slog.String("status", string(status)),
		slog.Int("citations", len(citations)),
		slog.Int("source_passages", len(retrieved.Passages)))

	return &domain.SubQuestionAnswer{
		Question:       question,
		AnswerText:     text,
		Status:         status,
		Citations:      citations,
		SourcePassages: retrieved.Passages,
	}, nil
}
