package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"finrag-orchestrator/internal/domain"
)

// RetrievalConfig tunes the temporal retriever. Values mirror product
// decisions, not structural requirements, so all of them are injected.
type RetrievalConfig struct {
	// DefaultK is the passage count used when the caller does not ask
	// for a specific k.
	DefaultK int
	// OverFetchFactor multiplies k when a target year is present, so
	// temporal filtering does not starve the result set.
	OverFetchFactor int
	// YearTolerance accepts passages within this many years of the
	// target, covering fiscal-year boundary ambiguity.
	YearTolerance int
}

// RetrievePassagesInput defines one retrieval request. TargetYear is
// domain.YearUnknown when the query carries no year.
type RetrievePassagesInput struct {
	Query      string
	K          int
	TargetYear int
}

// RetrievePassagesOutput holds the accepted passages in index-rank order.
// Fewer than k passages — or none — is a valid outcome, not an error.
type RetrievePassagesOutput struct {
	Passages []domain.Passage
}

// RetrievePassagesUsecase is the temporal retriever contract.
type RetrievePassagesUsecase interface {
	Execute(ctx context.Context, input RetrievePassagesInput) (*RetrievePassagesOutput, error)
}

type retrievePassagesUsecase struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	store    domain.PassageStore
	cfg      RetrievalConfig
	logger   *slog.Logger
}

// NewRetrievePassagesUsecase wires the temporal retriever over the
// embedding service, vector index, and passage store.
func NewRetrievePassagesUsecase(
	embedder domain.Embedder,
	index domain.VectorIndex,
	store domain.PassageStore,
	cfg RetrievalConfig,
	logger *slog.Logger,
) RetrievePassagesUsecase {
	return &retrievePassagesUsecase{
		embedder: embedder,
		index:    index,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

func (u *retrievePassagesUsecase) Execute(ctx context.Context, input RetrievePassagesInput) (*RetrievePassagesOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	k := input.K
	if k <= 0 {
		k = u.cfg.DefaultK
	}

	vector, err := u.embedder.Embed(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	searchK := k
	if input.TargetYear != domain.YearUnknown {
		searchK = k * u.cfg.OverFetchFactor
	}

	matches, err := u.index.Search(ctx, vector, searchK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	passages := make([]domain.Passage, 0, k)
	for _, m := range matches {
		if len(passages) >= k {
			break
		}
		passage, err := u.store.Lookup(ctx, m.PassageID)
		if err != nil {
			if errors.Is(err, domain.ErrPassageNotFound) {
				// Index and store drifted; skip the orphan hit.
				u.logger.Warn("indexed_passage_missing", slog.String("passage_id", m.PassageID))
				continue
			}
			return nil, fmt.Errorf("failed to look up passage %s: %w", m.PassageID, err)
		}
		if u.accept(passage, input.TargetYear) {
			passages = append(passages, passage)
		}
	}

	u.logger.Info("retrieval_completed",
		slog.Int("requested_k", k),
		slog.Int("search_k", searchK),
		slog.Int("accepted", len(passages)),
		slog.Int("target_year", input.TargetYear))

	return &RetrievePassagesOutput{Passages: passages}, nil
}

func (u *retrievePassagesUsecase) accept(p domain.Passage, targetYear int) bool {
	if targetYear == domain.YearUnknown {
		return true
	}
	diff := p.ReportYear - targetYear
	if diff < 0 {
		diff = -diff
	}
	return diff <= u.cfg.YearTolerance
}
