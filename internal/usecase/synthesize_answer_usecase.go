package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"finrag-orchestrator/internal/domain"
)

// SynthesizeAnswerUsecase merges the main answer and all follow-up
// answers into one coherent, cited final answer. Citation numbers are
// canonicalized in code before prompting: one contiguous number per
// underlying passage, regardless of how many sub-answers cite it.
type SynthesizeAnswerUsecase interface {
	Execute(ctx context.Context, originalQuestion string, results []domain.SubQuestionAnswer) (*domain.FinalAnswer, error)
}

type synthesizeAnswerUsecase struct {
	llm     domain.LLMClient
	prompts *PromptBuilder
	logger  *slog.Logger
}

// NewSynthesizeAnswerUsecase creates the synthesizer over the given model.
func NewSynthesizeAnswerUsecase(llm domain.LLMClient, prompts *PromptBuilder, logger *slog.Logger) SynthesizeAnswerUsecase {
	return &synthesizeAnswerUsecase{llm: llm, prompts: prompts, logger: logger}
}

func (u *synthesizeAnswerUsecase) Execute(ctx context.Context, originalQuestion string, results []domain.SubQuestionAnswer) (*domain.FinalAnswer, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no sub-question results to synthesize")
	}

	blocks, citations := renumberCitations(results)

	prompt := u.prompts.Synthesis(originalQuestion, blocks)
	completion, err := u.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	u.logger.Info("synthesis_completed",
		slog.Int("sub_answers", len(results)),
		slog.Int("citations", len(citations)))

	return &domain.FinalAnswer{
		Text:      strings.TrimSpace(completion),
		Citations: citations,
	}, nil
}

// renumberCitations assigns each distinct passage one canonical number,
// contiguous from 1 in first-citation order, and rewrites every
// sub-answer's local [n] markers to the canonical numbering.
func renumberCitations(results []domain.SubQuestionAnswer) ([]SynthesisBlock, []domain.Citation) {
	canonical := make(map[string]int)
	var ordered []domain.Citation

	blocks := make([]SynthesisBlock, 0, len(results))
	for _, res := range results {
		localToCanonical := make(map[int]int, len(res.Citations))
		var sources []string
		for _, cite := range res.Citations {
			key := passageKey(cite.Passage)
			canon, ok := canonical[key]
			if !ok {
				canon = len(ordered) + 1
				canonical[key] = canon
				ordered = append(ordered, domain.Citation{Index: canon, Passage: cite.Passage})
			}
			localToCanonical[cite.Index] = canon
			sources = append(sources, fmt.Sprintf("[%d] %s, chunk %d", canon, cite.Passage.SourceDocument, cite.Passage.PositionIndex))
		}

		blocks = append(blocks, SynthesisBlock{
			Question: res.Question,
			Answer:   rewriteCitationMarkers(res.AnswerText, localToCanonical),
			Sources:  sources,
		})
	}

	return blocks, ordered
}

func rewriteCitationMarkers(text string, localToCanonical map[int]int) string {
	return citationPattern.ReplaceAllStringFunc(text, func(marker string) string {
		n, err := strconv.Atoi(strings.Trim(marker, "[]"))
		if err != nil {
			return marker
		}
		canon, ok := localToCanonical[n]
		if !ok {
			// Marker was already dropped as dangling during parsing.
			return marker
		}
		return fmt.Sprintf("[%d]", canon)
	})
}

func passageKey(p domain.Passage) string {
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("%s#%d", p.SourceDocument, p.PositionIndex)
}
