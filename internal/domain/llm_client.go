package domain

import "context"

// LLMClient sends a prompt to the language model service and returns the
// generated text. Implementations enforce a per-call timeout and report
// failures through the error taxonomy (ErrRateLimited, ErrServiceTimeout,
// ErrServiceUnavailable, ErrMalformedResponse).
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
