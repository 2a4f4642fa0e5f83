package domain

import "context"

// Embedder maps text to a fixed-length vector. Implementations must
// return ErrEmptyInput for empty text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
