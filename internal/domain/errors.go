package domain

import "errors"

// Transport and service failures abort the current query; callers test
// with errors.Is. Parsing irregularities never surface through these —
// they degrade locally.
var (
	// ErrEmptyInput rejects empty text handed to the embedder.
	ErrEmptyInput = errors.New("empty input")

	// ErrPassageNotFound is returned for lookups of unknown passage ids.
	ErrPassageNotFound = errors.New("passage not found")

	// ErrRateLimited reports that the language model service throttled
	// the request.
	ErrRateLimited = errors.New("llm rate limited")

	// ErrServiceTimeout reports that an external call exceeded its
	// per-call timeout.
	ErrServiceTimeout = errors.New("service timeout")

	// ErrServiceUnavailable covers transport-level failures other than
	// throttling and timeout.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrMalformedResponse reports a language model response that is
	// structurally unusable (empty body, no choices).
	ErrMalformedResponse = errors.New("malformed llm response")
)

// IsTransportError reports whether err belongs to the fatal-to-query
// category of the error taxonomy.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServiceTimeout) ||
		errors.Is(err, ErrServiceUnavailable)
}
