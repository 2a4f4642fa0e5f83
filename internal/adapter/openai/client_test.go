package openai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	sdk "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"finrag-orchestrator/internal/domain"
)

func testClient() *Client {
	return NewClient(ClientConfig{APIKey: "test"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMapErr(t *testing.T) {
	c := testClient()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"deadline exceeded", context.DeadlineExceeded, domain.ErrServiceTimeout},
		{"http 429", &sdk.APIError{HTTPStatusCode: http.StatusTooManyRequests}, domain.ErrRateLimited},
		{"http 500", &sdk.APIError{HTTPStatusCode: http.StatusInternalServerError}, domain.ErrServiceUnavailable},
		{"plain transport error", errors.New("connection refused"), domain.ErrServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(c.mapErr(tt.in), tt.want))
		})
	}
}

func TestMapErr_CancellationPassesThrough(t *testing.T) {
	c := testClient()
	assert.Equal(t, context.Canceled, c.mapErr(context.Canceled))
}

func TestEmbed_RejectsEmptyInput(t *testing.T) {
	c := testClient()

	_, err := c.Embed(context.Background(), "   ")
	assert.True(t, errors.Is(err, domain.ErrEmptyInput))
}
