package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"finrag-orchestrator/internal/domain"
)

// PassageRepository serves both the vector index and the passage store
// over the report_passages table built by the ingestion process. The
// table is never written during answering.
type PassageRepository struct {
	pool *pgxpool.Pool
}

// NewPassageRepository creates the repository over a pgx pool with
// pgvector types registered.
func NewPassageRepository(pool *pgxpool.Pool) *PassageRepository {
	return &PassageRepository{pool: pool}
}

// Search returns the k nearest passages by cosine distance, most
// relevant first.
func (r *PassageRepository) Search(ctx context.Context, vector []float32, k int) ([]domain.Match, error) {
	query := `
		SELECT id, embedding <=> $1 AS distance
		FROM report_passages
		ORDER BY embedding <=> $1 ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search passages: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.PassageID, &m.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return matches, nil
}

// Lookup resolves one passage id, failing explicitly on unknown ids.
func (r *PassageRepository) Lookup(ctx context.Context, id string) (domain.Passage, error) {
	query := `
		SELECT id, source_document, position_index, content, report_year
		FROM report_passages
		WHERE id = $1
	`
	var p domain.Passage
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.SourceDocument, &p.PositionIndex, &p.Text, &p.ReportYear)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Passage{}, fmt.Errorf("%w: %s", domain.ErrPassageNotFound, id)
		}
		return domain.Passage{}, fmt.Errorf("failed to look up passage: %w", err)
	}
	return p, nil
}

// ListSample returns up to n passages in stable document order.
func (r *PassageRepository) ListSample(ctx context.Context, n int) ([]domain.Passage, error) {
	query := `
		SELECT id, source_document, position_index, content, report_year
		FROM report_passages
		ORDER BY source_document, position_index
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage
	for rows.Next() {
		var p domain.Passage
		if err := rows.Scan(&p.ID, &p.SourceDocument, &p.PositionIndex, &p.Text, &p.ReportYear); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return passages, nil
}

var (
	_ domain.VectorIndex  = (*PassageRepository)(nil)
	_ domain.PassageStore = (*PassageRepository)(nil)
)
