package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finrag-orchestrator/internal/domain"
)

// AnalyzeGapsUsecase inspects a draft answer against its retrieved
// context and proposes follow-up questions. Analysis is advisory: output
// that cannot be parsed yields empty lists, never an error.
type AnalyzeGapsUsecase interface {
	Execute(ctx context.Context, question, mainAnswer string, contextPassages []domain.Passage) (*domain.GapAnalysis, error)
}

type analyzeGapsUsecase struct {
	llm     domain.LLMClient
	prompts *PromptBuilder
	logger  *slog.Logger
}

// NewAnalyzeGapsUsecase creates the gap analyzer over the given model.
func NewAnalyzeGapsUsecase(llm domain.LLMClient, prompts *PromptBuilder, logger *slog.Logger) AnalyzeGapsUsecase {
	return &analyzeGapsUsecase{llm: llm, prompts: prompts, logger: logger}
}

func (u *analyzeGapsUsecase) Execute(ctx context.Context, question, mainAnswer string, contextPassages []domain.Passage) (*domain.GapAnalysis, error) {
	prompt := u.prompts.GapAnalysis(question, mainAnswer, contextPassages)
	completion, err := u.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("gap analysis failed: %w", err)
	}

	analysis := parseGapSections(completion)
	if len(analysis.MissingInformation) == 0 && len(analysis.FollowUpQuestions) == 0 {
		u.logger.Warn("gap_analysis_unparsed", slog.String("question", question))
	}

	u.logger.Info("gaps_identified",
		slog.Int("missing", len(analysis.MissingInformation)),
		slog.Int("follow_ups", len(analysis.FollowUpQuestions)))
	return analysis, nil
}

// parseGapSections locates the two fixed section markers and collects the
// bulleted lines under each. A missing or malformed section produces an
// empty list for that field.
func parseGapSections(text string) *domain.GapAnalysis {
	analysis := &domain.GapAnalysis{}

	section := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, missingInfoHeader):
			section = "missing"
		case strings.HasPrefix(line, followUpHeader):
			section = "questions"
		case strings.HasPrefix(line, bulletPrefix):
			item := strings.TrimSpace(strings.TrimPrefix(line, bulletPrefix))
			if item == "" {
				continue
			}
			switch section {
			case "missing":
				analysis.MissingInformation = append(analysis.MissingInformation, item)
			case "questions":
				analysis.FollowUpQuestions = append(analysis.FollowUpQuestions, item)
			}
		}
	}
	return analysis
}
