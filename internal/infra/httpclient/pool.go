package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport is reused across all pooled clients so repeated
// OpenAI calls within one query reuse connections instead of paying a
// TLS handshake per call.
var sharedTransport = &http.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     120 * time.Second,
	DisableKeepAlives:   false,
}

// NewPooledClient creates an http.Client sharing the common transport.
// Per-call deadlines come from request contexts, so the client itself
// carries no timeout.
func NewPooledClient() *http.Client {
	return &http.Client{
		Transport: sharedTransport,
	}
}
