package domain

import "context"

// Match is one vector-search hit. Lower distance means more relevant.
type Match struct {
	PassageID string
	Distance  float32
}

// VectorIndex searches stored passage vectors for the k nearest
// neighbours of a query vector, most relevant first.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, k int) ([]Match, error)
}
