package gemini

import (
	"context"
	"fmt"

	"github.com/complegal/comprate/internal/domain"
	"github.com/google/generative-ai-go/genai"
)

// Open starts a new chat conversation bound to the given model identifier.
func (c *Client) Open(ctx context.Context, model string) (domain.Conversation, error) {
	m := c.genai.GenerativeModel(model)
	return &conversation{chat: m.StartChat()}, nil
}

// conversation holds one open chat session. The SDK keeps the transcript on
// its side; attachments are passed as file references, never re-sent bytes.
type conversation struct {
	chat *genai.ChatSession
}

func (s *conversation) Send(ctx context.Context, text string, attachments []domain.RemoteHandle) (string, error) {
	parts := make([]genai.Part, 0, len(attachments)+1)
	parts = append(parts, genai.Text(text))
	for _, h := range attachments {
		parts = append(parts, genai.FileData{MIMEType: h.MIMEType, URI: h.URI})
	}

	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini send error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			output += string(t)
		}
	}

	return output, nil
}
