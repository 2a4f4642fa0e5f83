package usecase

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"finrag-orchestrator/internal/domain"
)

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// AnswerParser turns raw model output into a classified answer with
// resolved citations. Classification happens here, once, so no caller
// ever branches on marker substrings.
type AnswerParser struct {
	insufficiencyMarker string
	logger              *slog.Logger
}

// NewAnswerParser creates a parser recognizing the given marker text.
func NewAnswerParser(insufficiencyMarker string, logger *slog.Logger) AnswerParser {
	return AnswerParser{insufficiencyMarker: insufficiencyMarker, logger: logger}
}

// Parse classifies raw output and maps bracketed citation markers back to
// the supplied passages (1-based, in prompt order). Markers referencing
// indices outside the passage set are dropped and logged. Output without
// any parseable markers degrades to plain answer text with no citations.
func (p AnswerParser) Parse(raw string, passages []domain.Passage) (domain.AnswerStatus, string, []domain.Citation) {
	text := strings.TrimSpace(raw)
	if text == "" || strings.Contains(text, p.insufficiencyMarker) {
		return domain.StatusInsufficient, p.insufficiencyMarker, nil
	}

	var citations []domain.Citation
	seen := make(map[int]bool)
	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		if n < 1 || n > len(passages) {
			p.logger.Warn("dangling_citation_dropped",
				slog.Int("index", n),
				slog.Int("passage_count", len(passages)))
			continue
		}
		citations = append(citations, domain.Citation{Index: n, Passage: passages[n-1]})
	}

	return domain.StatusAnswered, text, citations
}
