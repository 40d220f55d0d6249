package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
)

// AnthropicClient implements the Client interface for Anthropic vision models.
// The underlying client is created lazily on the first request.
type AnthropicClient struct {
	apiKey         string
	model          string
	client         *anthropic.Client
	debugTransport http.RoundTripper
}

// NewAnthropicClient creates a new Anthropic client with lazy initialization.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		model:  model,
	}
}

// ProviderName returns the provider name for this client.
func (c *AnthropicClient) ProviderName() string {
	return "anthropic"
}

// IsConfigured returns true if the client has a valid API key.
func (c *AnthropicClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *AnthropicClient) SetDebugTransport(transport http.RoundTripper) {
	c.debugTransport = transport
	// Clear the existing client to force re-initialization with debug transport
	c.client = nil
}

// initializeClientIfNeeded initializes the Anthropic client if it hasn't been
// initialized yet.
func (c *AnthropicClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}

	var options []option.RequestOption
	options = append(options, option.WithAPIKey(c.apiKey))

	if c.debugTransport != nil {
		options = append(options, option.WithHTTPClient(&http.Client{Transport: c.debugTransport}))
		logger.Debug("Anthropic client initialized with debug transport", "provider", "anthropic")
	} else {
		logger.Debug("Anthropic client initialized", "provider", "anthropic")
	}

	client := anthropic.NewClient(options...)
	c.client = &client

	return nil
}

// Generate sends the prompt and screenshots as base64 image blocks and
// returns the reply text.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	logger.Debug("Anthropic Generate starting", "model", c.model, "images", len(images))

	if err := c.initializeClientIfNeeded(); err != nil {
		return "", fmt.Errorf("failed to initialize Anthropic client: %w", err)
	}

	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)}
	for _, img := range images {
		encoded := base64.StdEncoding.EncodeToString(img)
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", encoded))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	// Concatenate all text blocks
	var content string
	for _, block := range message.Content {
		content += block.Text
	}

	logger.Debug("Anthropic response received", "content_length", len(content))
	return content, nil
}
