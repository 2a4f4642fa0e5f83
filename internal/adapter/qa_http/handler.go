package qa_http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/usecase"
)

// Handler exposes the question-answering pipeline over HTTP.
type Handler struct {
	answer   usecase.AnswerQuestionUsecase
	retrieve usecase.RetrievePassagesUsecase
	yearMin  int
	yearMax  int
}

// NewHandler wires the HTTP surface. yearMin/yearMax bound target-year
// extraction for the retrieve endpoint.
func NewHandler(answer usecase.AnswerQuestionUsecase, retrieve usecase.RetrievePassagesUsecase, yearMin, yearMax int) *Handler {
	return &Handler{answer: answer, retrieve: retrieve, yearMin: yearMin, yearMax: yearMax}
}

// AnswerRequest is the body of POST /v1/qa/answer.
type AnswerRequest struct {
	Question string `json:"question"`
}

// CitationItem is one cited passage in an answer response.
type CitationItem struct {
	Index          int    `json:"index"`
	SourceDocument string `json:"source_document"`
	PositionIndex  int    `json:"position_index"`
	ReportYear     int    `json:"report_year,omitempty"`
	Text           string `json:"text"`
}

// AnswerResponse is the terminal artifact returned to the caller.
type AnswerResponse struct {
	Answer    string         `json:"answer"`
	Citations []CitationItem `json:"citations"`
}

// Answer handles POST /v1/qa/answer.
func (h *Handler) Answer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	final, err := h.answer.Execute(c.Request().Context(), usecase.AnswerQuestionInput{Question: req.Question})
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}

	citations := make([]CitationItem, 0, len(final.Citations))
	for _, cite := range final.Citations {
		citations = append(citations, CitationItem{
			Index:          cite.Index,
			SourceDocument: cite.Passage.SourceDocument,
			PositionIndex:  cite.Passage.PositionIndex,
			ReportYear:     cite.Passage.ReportYear,
			Text:           cite.Passage.Text,
		})
	}

	return c.JSON(http.StatusOK, AnswerResponse{
		Answer:    final.Text,
		Citations: citations,
	})
}

// RetrieveRequest is the body of POST /v1/qa/retrieve.
type RetrieveRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// PassageItem is one retrieved passage.
type PassageItem struct {
	ID             string `json:"id"`
	SourceDocument string `json:"source_document"`
	PositionIndex  int    `json:"position_index"`
	ReportYear     int    `json:"report_year,omitempty"`
	Text           string `json:"text"`
}

// RetrieveResponse lists passages in relevance order.
type RetrieveResponse struct {
	TargetYear int           `json:"target_year,omitempty"`
	Passages   []PassageItem `json:"passages"`
}

// Retrieve handles POST /v1/qa/retrieve, exposing the temporal retriever
// for inspection.
func (h *Handler) Retrieve(c echo.Context) error {
	var req RetrieveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	targetYear := domain.ExtractTargetYear(req.Query, h.yearMin, h.yearMax)
	out, err := h.retrieve.Execute(c.Request().Context(), usecase.RetrievePassagesInput{
		Query:      req.Query,
		K:          req.K,
		TargetYear: targetYear,
	})
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}

	passages := make([]PassageItem, 0, len(out.Passages))
	for _, p := range out.Passages {
		passages = append(passages, PassageItem{
			ID:             p.ID,
			SourceDocument: p.SourceDocument,
			PositionIndex:  p.PositionIndex,
			ReportYear:     p.ReportYear,
			Text:           p.Text,
		})
	}

	return c.JSON(http.StatusOK, RetrieveResponse{
		TargetYear: targetYear,
		Passages:   passages,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrServiceTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
