// Package gemini adapts the Gemini Files and chat APIs to the domain
// interfaces. One client is shared for the whole process lifetime.
package gemini

import (
	"context"
	"fmt"
	"io"

	"github.com/complegal/comprate/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client wraps the Gemini SDK client.
type Client struct {
	genai *genai.Client
}

// NewClient creates a Gemini client from a static API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{genai: c}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.genai.Close()
}

// Upload sends one document to the Files API and returns its remote handle.
// A single call is one attempt; callers own the retry policy.
func (c *Client) Upload(ctx context.Context, r io.Reader, opts domain.UploadOptions) (domain.RemoteHandle, error) {
	mimeType := opts.MIMEType
	if mimeType == "" {
		mimeType = domain.MIMETypePDF
	}

	file, err := c.genai.UploadFile(ctx, "", r, &genai.UploadFileOptions{
		DisplayName: opts.DisplayName,
		MIMEType:    mimeType,
	})
	if err != nil {
		return domain.RemoteHandle{}, fmt.Errorf("gemini file upload: %w", err)
	}

	return domain.RemoteHandle{
		ID:       file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
	}, nil
}
