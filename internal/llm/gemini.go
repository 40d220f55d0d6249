package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
)

// GeminiClient implements the Client interface for the Google Gemini API.
// The underlying genai client is created lazily on the first request.
type GeminiClient struct {
	apiKey         string
	model          string
	client         *genai.Client
	debugTransport http.RoundTripper
}

// NewGeminiClient creates a new Gemini client with lazy initialization.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
	}
}

// ProviderName returns the provider name for this client.
func (c *GeminiClient) ProviderName() string {
	return "gemini"
}

// IsConfigured returns true if the client has a valid API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *GeminiClient) SetDebugTransport(transport http.RoundTripper) {
	c.debugTransport = transport
	// Clear the existing client to force re-initialization with debug transport
	c.client = nil
}

// initializeClientIfNeeded initializes the genai client if it hasn't been
// initialized yet.
func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) error {
	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return fmt.Errorf("gemini API key not configured")
	}

	clientConfig := &genai.ClientConfig{
		APIKey: c.apiKey,
	}
	if c.debugTransport != nil {
		clientConfig.HTTPClient = &http.Client{Transport: c.debugTransport}
		logger.Debug("Gemini client initialized with debug transport", "provider", "gemini")
	} else {
		logger.Debug("Gemini client initialized", "provider", "gemini")
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c.client = client
	return nil
}

// Generate sends the prompt and screenshots to Gemini and returns the reply
// text. Thought parts are skipped; only text content is returned.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	logger.Debug("Gemini Generate starting", "model", c.model, "images", len(images))

	if err := c.initializeClientIfNeeded(ctx); err != nil {
		return "", fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	parts := []*genai.Part{{Text: prompt}}
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: img},
		})
	}
	contents := []*genai.Content{{Parts: parts, Role: genai.RoleUser}}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	var contentBuilder strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text == "" || part.Thought {
				continue
			}
			contentBuilder.WriteString(part.Text)
		}
	}

	content := contentBuilder.String()
	logger.Debug("Gemini response received", "content_length", len(content))
	return content, nil
}
