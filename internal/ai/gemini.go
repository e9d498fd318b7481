package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"pantrybot/internal/config"
)

type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ Client = (*geminiClient)(nil)

func newGeminiClient(cfg config.AIConfig) (*geminiClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" || model == "gpt-4.1" {
		// config default is an OpenAI model name; pick a sane Gemini one
		model = "gemini-2.0-flash"
	}
	return &geminiClient{
		client:      client,
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (c *geminiClient) NormalizeIngredients(ctx context.Context, title string, lines []string) ([]string, error) {
	content, err := c.complete(ctx, normalizeSystemPrompt, normalizeUserPrompt(title, lines))
	if err != nil {
		return nil, err
	}
	return parseStringArray(content)
}

func (c *geminiClient) SelectSuggestions(ctx context.Context, candidates []Candidate, limit int) ([]string, error) {
	content, err := c.complete(ctx, selectSystemPrompt, selectUserPrompt(candidates, limit))
	if err != nil {
		return nil, err
	}
	selected, err := parseStringArray(content)
	if err != nil {
		return nil, err
	}
	return filterToCandidates(selected, candidates, limit), nil
}

func (c *geminiClient) complete(ctx context.Context, system, user string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty content")
	}
	return text, nil
}
