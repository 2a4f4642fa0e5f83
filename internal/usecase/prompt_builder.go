package usecase

import (
	"fmt"
	"strings"

	"finrag-orchestrator/internal/domain"
)

// Section markers the gap-analysis prompt asks for and the parser locates.
const (
	missingInfoHeader = "MISSING INFORMATION:"
	followUpHeader    = "FOLLOW-UP QUESTIONS NEEDED:"
	bulletPrefix      = "- "
)

// PromptBuilder renders every prompt the pipeline sends to the language
// model service. The insufficiency marker and truncation budgets are
// injected so product tuning never touches pipeline code.
type PromptBuilder struct {
	insufficiencyMarker string
	passageCharBudget   int
	samplePassageLimit  int
}

// NewPromptBuilder creates a builder with the given marker text, per-sample
// character budget, and sample passage limit.
func NewPromptBuilder(insufficiencyMarker string, passageCharBudget, samplePassageLimit int) *PromptBuilder {
	return &PromptBuilder{
		insufficiencyMarker: insufficiencyMarker,
		passageCharBudget:   passageCharBudget,
		samplePassageLimit:  samplePassageLimit,
	}
}

// InsufficiencyMarker returns the marker text answers use to signal that
// the passages do not support an answer.
func (b *PromptBuilder) InsufficiencyMarker() string {
	return b.insufficiencyMarker
}

// SubQuestion renders the grounded-answer prompt: numbered passages, the
// question, and strict citation instructions.
func (b *PromptBuilder) SubQuestion(question string, passages []domain.Passage) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful financial analyst assistant. Use only the provided source passages to answer the user's question.\n")
	sb.WriteString("Cite sources using numbered references like [1], [2], [3] that map exactly to the passage numbers below.\n\n")
	sb.WriteString("When answering financial questions, provide comprehensive, detailed answers that include:\n")
	sb.WriteString("- Specific numbers and figures from the passages\n")
	sb.WriteString("- Year-over-year comparisons when available\n")
	sb.WriteString("- Key financial metrics and ratios\n")
	sb.WriteString("- Detailed breakdowns by segment or category\n\n")
	sb.WriteString("Answer in plain prose without markup or a trailing sources section.\n")
	sb.WriteString(fmt.Sprintf("If the passages do not support an answer, reply exactly: %s\n\n", b.insufficiencyMarker))

	sb.WriteString("Passages:\n")
	for i, p := range passages {
		sb.WriteString(fmt.Sprintf("[%d] (%s, chunk %d%s)\n", i+1, p.SourceDocument, p.PositionIndex, yearTag(p)))
		sb.WriteString(p.Text)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n")
	return sb.String()
}

// Alternatives renders the reformulation prompt used after an
// insufficient answer.
func (b *PromptBuilder) Alternatives(question string, n int) string {
	var sb strings.Builder
	sb.WriteString("You are a financial analyst assistant. The original question failed to find relevant data in the annual reports. ")
	sb.WriteString(fmt.Sprintf("Generate %d alternative ways to ask the same question that might find the information.\n\n", n))
	sb.WriteString("Original question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nGenerate alternative questions that:\n")
	sb.WriteString("1. Use different terminology (e.g., \"revenue\" vs \"sales\" vs \"income\")\n")
	sb.WriteString("2. Focus on different aspects (e.g., segment revenue vs total revenue)\n")
	sb.WriteString("3. Use different time references (e.g., \"2020\" vs \"full year 2020\")\n\n")
	sb.WriteString(fmt.Sprintf("Provide %d alternative questions, one per line, starting with \"- \":\n", n))
	return sb.String()
}

// Decompose renders the compound-question splitting prompt.
func (b *PromptBuilder) Decompose(question string) string {
	var sb strings.Builder
	sb.WriteString("You are a financial analyst assistant. Given a complex question about financial data, break it down into 2-4 simple, independent sub-questions that can be answered separately but together help answer the main question.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Each sub-question focuses on ONE company at a time\n")
	sb.WriteString("- Each sub-question focuses on ONE specific metric\n")
	sb.WriteString("- Sub-questions are independent and can be answered separately\n\n")
	sb.WriteString("Good: \"What was Ford's net profit margin in 2022?\"\n")
	sb.WriteString("Bad: \"What was the net profit margin for Ford, Tesla, and BMW in 2022?\"\n\n")
	sb.WriteString("Original question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nProvide 2-4 sub-questions, one per line, starting with \"- \":\n")
	return sb.String()
}

// DecomposeWithContext renders the context-driven variant: sample
// passages steer sub-questions toward concretely available data.
func (b *PromptBuilder) DecomposeWithContext(question string, samples []domain.Passage) string {
	var sb strings.Builder
	sb.WriteString("You are a financial analyst assistant. The main question failed to find sufficient data, but we have some context. Generate 2-3 targeted sub-questions that would help answer the original question based on the available context.\n\n")
	sb.WriteString("Original question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAvailable context:\n")
	sb.WriteString(b.sampleContext(samples))
	sb.WriteString("\nGenerate sub-questions that target specific metrics or data points mentioned in the context.\n")
	sb.WriteString("Provide 2-3 sub-questions, one per line, starting with \"- \":\n")
	return sb.String()
}

// GapAnalysis renders the missing-information analysis prompt.
func (b *PromptBuilder) GapAnalysis(question, mainAnswer string, samples []domain.Passage) string {
	var sb strings.Builder
	sb.WriteString("You are a financial analyst assistant. An initial answer to the user's question exists; analyze what information is missing and what additional data would make it more comprehensive.\n\n")
	sb.WriteString("Original question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nMain answer provided: ")
	sb.WriteString(mainAnswer)
	sb.WriteString("\n\nAvailable context from retrieved documents:\n")
	sb.WriteString(b.sampleContext(samples))
	sb.WriteString("\nFocus on gaps in: specific financial numbers, year-over-year comparisons, segment breakdowns, and explanatory factors.\n\n")
	sb.WriteString("Respond in exactly this format:\n")
	sb.WriteString(missingInfoHeader)
	sb.WriteString("\n- [specific missing information]\n\n")
	sb.WriteString(followUpHeader)
	sb.WriteString("\n- [question to collect missing info]\n")
	return sb.String()
}

// SynthesisBlock is one sub-answer, already renumbered to canonical
// citation indices, ready for the synthesis prompt.
type SynthesisBlock struct {
	Question string
	Answer   string
	Sources  []string
}

// Synthesis renders the final merge prompt over all sub-answers.
func (b *PromptBuilder) Synthesis(originalQuestion string, blocks []SynthesisBlock) string {
	var sb strings.Builder
	sb.WriteString("You are a financial analyst assistant. Based on the sub-question answers below, provide one comprehensive answer to the original question.\n\n")
	sb.WriteString("Original question: ")
	sb.WriteString(originalQuestion)
	sb.WriteString("\n\nSub-question analysis:\n")
	for i, blk := range blocks {
		sb.WriteString(fmt.Sprintf("Sub-question %d: %s\n", i+1, blk.Question))
		sb.WriteString(fmt.Sprintf("Answer: %s\n", blk.Answer))
		if len(blk.Sources) > 0 {
			sb.WriteString(fmt.Sprintf("Sources: %s\n", strings.Join(blk.Sources, "; ")))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Provide a clear, comprehensive answer that:\n")
	sb.WriteString("1. Directly answers the original question with specific data and metrics\n")
	sb.WriteString("2. Includes year-over-year comparisons and segment breakdowns where available\n")
	sb.WriteString("3. Keeps the citation numbers [n] EXACTLY as they appear in the sub-answers; do not renumber or invent citations\n")
	sb.WriteString("4. Resolves contradictions between sub-answers by preferring the more specific or more recent figure, and notes the discrepancy instead of dropping a value\n")
	sb.WriteString(fmt.Sprintf("5. Some sub-answers may state \"%s\"; treat those as gaps and say clearly what could not be determined\n", b.insufficiencyMarker))
	return sb.String()
}

func (b *PromptBuilder) sampleContext(samples []domain.Passage) string {
	limit := b.samplePassageLimit
	if len(samples) < limit {
		limit = len(samples)
	}
	var sb strings.Builder
	for _, p := range samples[:limit] {
		sb.WriteString(truncateText(p.Text, b.passageCharBudget))
		sb.WriteString("\n")
	}
	return sb.String()
}

func yearTag(p domain.Passage) string {
	if !p.HasYear() {
		return ""
	}
	return fmt.Sprintf(", year %d", p.ReportYear)
}

func truncateText(s string, budget int) string {
	if budget <= 0 || len(s) <= budget {
		return s
	}
	return s[:budget]
}

// parseBulletLines extracts the payload of every "- " line, the fixed
// list format all generation prompts request.
func parseBulletLines(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, bulletPrefix) {
			if item := strings.TrimSpace(strings.TrimPrefix(line, bulletPrefix)); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}
