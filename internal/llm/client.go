// Package llm provides the model backend used by the decision engine: a
// prompt plus one or two screenshots in, free text out. Gemini is the primary
// provider; OpenAI and Anthropic vision models are available behind the same
// interface.
package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Client is the opaque generative backend. Generate must be callable
// synchronously; a failed call is reported as an error, which is distinct
// from a well-formed but empty reply.
type Client interface {
	// Generate sends the prompt and the ordered images (current frame first,
	// previous frame second when present) and returns the reply text.
	Generate(ctx context.Context, prompt string, images [][]byte) (string, error)

	// ProviderName identifies the backing provider.
	ProviderName() string

	// IsConfigured reports whether the client holds a usable credential.
	IsConfigured() bool

	// SetDebugTransport installs an HTTP transport for network debugging.
	SetDebugTransport(transport http.RoundTripper)
}

// NewClient creates a backend client for the given provider.
func NewClient(provider, apiKey, model string) (Client, error) {
	switch provider {
	case "gemini":
		return NewGeminiClient(apiKey, model), nil
	case "openai":
		return NewOpenAIClient(apiKey, model), nil
	case "anthropic":
		return NewAnthropicClient(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported provider '%s'. Supported providers: gemini, openai, anthropic", provider)
	}
}
