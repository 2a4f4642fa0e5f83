package domain

import "context"

// PassageStore resolves passage ids to full passages. The store is
// read-only during answering; mutation happens only in the separate
// ingestion process.
type PassageStore interface {
	// Lookup returns ErrPassageNotFound for unknown ids rather than a
	// zero-value passage.
	Lookup(ctx context.Context, id string) (Passage, error)
	// ListSample returns up to n passages in stable document order, for
	// inspection and context-driven decomposition.
	ListSample(ctx context.Context, n int) ([]Passage, error)
}
