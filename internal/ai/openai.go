package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"pantrybot/internal/config"
)

type openAIClient struct {
	client      openai.Client
	model       string
	temperature float64
}

var _ Client = (*openAIClient)(nil)

func newOpenAIClient(cfg config.AIConfig) *openAIClient {
	return &openAIClient{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (c *openAIClient) NormalizeIngredients(ctx context.Context, title string, lines []string) ([]string, error) {
	content, err := c.complete(ctx, normalizeSystemPrompt, normalizeUserPrompt(title, lines))
	if err != nil {
		return nil, err
	}
	return parseStringArray(content)
}

func (c *openAIClient) SelectSuggestions(ctx context.Context, candidates []Candidate, limit int) ([]string, error) {
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

func (c *openAIClient) complete(ctx context.Context, system, user string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
