// Package llm wraps the hosted text-generation API behind a small Gateway
// interface so the chat service can be tested without network access.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kadelabs/converse/internal/config"
)

// Generation parameters for chat completions. Responses are kept short;
// this is a conversational assistant, not a document generator.
const (
	maxOutputTokens = 200
	temperature     = 0.9
	topP            = 0.1
	topK            = 16
)

// Gateway is the contract the chat service depends on: given a prompt,
// return a generated completion. Implementations must not retry; a failed
// call surfaces to the caller and the conversation stays unmodified.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// modelsClient is the slice of the genai SDK we use, extracted as an
// interface so tests can substitute a fake.
type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGateway implements Gateway against the Google Gemini API.
type GeminiGateway struct {
	models modelsClient
	model  string
}

// NewGeminiGateway creates a Gemini-backed gateway from config. The API key
// is validated at config load time; a client construction failure here is
// still treated as fatal by the caller.
func NewGeminiGateway(ctx context.Context, cfg config.LLMConfig) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiGateway{
		models: client.Models,
		model:  cfg.Model,
	}, nil
}

// Generate sends the prompt as a single user message and returns the
// model's visible text. The request is bounded only by ctx; timeout policy
// belongs to the caller.
func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
		Temperature:     genai.Ptr(float32(temperature)),
		TopP:            genai.Ptr(float32(topP)),
		TopK:            genai.Ptr(float32(topK)),
	})
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := extractVisibleText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned no text for model %s", g.model)
	}
	return text, nil
}

// extractVisibleText concatenates the non-thought text parts of the first
// candidate.
func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
