package llm

import (
	"context"
	"errors"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

var (
	// ErrEmptyText is returned when text to embed is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrNoEmbeddingData is returned when the provider responds without vectors
	ErrNoEmbeddingData = errors.New("no embedding data returned")
	// ErrWrongDimensions is returned when a provider vector has the wrong size
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoProvider is returned when no provider API key is configured
	ErrNoProvider = errors.New("no LLM provider configured")
)

// IsTransient classifies provider errors that are worth retrying: rate
// limits, 5xx responses, and network timeouts. Auth failures and malformed
// input propagate immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code == http.StatusTooManyRequests || genaiErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
