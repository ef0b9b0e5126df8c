// Package textgen rewrites raw product descriptions into marketing copy
// through the Google GenAI API.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/dmitrijs2005/productkeeper/internal/common"
)

// ErrNoText is returned when the model answers with an empty body.
var ErrNoText = errors.New("text generation returned no text")

// Enhancer is what the workflow and the proxy endpoint depend on.
type Enhancer interface {
	Enhance(ctx context.Context, description string) (string, error)
}

// generator matches (*genai.Models).GenerateContent.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGenAIClient = genai.NewClient

// Options configure a Client.
type Options struct {
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

type Client struct {
	gen      generator
	model    string
	language string
	timeout  time.Duration
}

// New creates a GenAI-backed client. An empty API key yields
// common.ErrNotConfigured.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("text generation: %w", common.ErrNotConfigured)
	}

	c, err := newGenAIClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newWithGenerator(c.Models, opts), nil
}

func newWithGenerator(gen generator, opts Options) *Client {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.Language == "" {
		opts.Language = "Dutch"
	}
	return &Client{
		gen:      gen,
		model:    opts.Model,
		language: opts.Language,
		timeout:  opts.Timeout,
	}
}

// Enhance returns the rewritten, trimmed description. Upstream failures are
// reported as *StatusError when the API supplied an HTTP code.
func (c *Client) Enhance(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", common.ErrEmptyDescription
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromText(BuildPrompt(description, c.language), genai.RoleUser),
	}

	resp, err := c.gen.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fromAPIError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Disabled stands in for Client when no API key is configured.
type Disabled struct{}

func (Disabled) Enhance(context.Context, string) (string, error) {
	return "", fmt.Errorf("text generation: %w", common.ErrNotConfigured)
}
