package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	"pantrybot/internal/config"
)

const (
	defaultOpenRouterModel    = "openai/gpt-4.1-mini"
	defaultOpenRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
)

// itemList is the structured-output shape we ask OpenRouter for.
type itemList struct {
	Items []string `json:"items" jsonschema:"required"`
}

type openRouterClient struct {
	apiKey     string
	model      string
	endpoint   string
	schema     map[string]any
	httpClient *http.Client
}

var _ Client = (*openRouterClient)(nil)

func newOpenRouterClient(cfg config.AIConfig) *openRouterClient {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schemaJSON, _ := json.Marshal(r.Reflect(&itemList{}))
	var schema map[string]any
	_ = json.Unmarshal(schemaJSON, &schema)

	model := strings.TrimSpace(cfg.Model)
	if model == "" || !strings.Contains(model, "/") {
		model = defaultOpenRouterModel
	}

	endpoint := os.Getenv("OPENROUTER_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultOpenRouterEndpoint
	}

	return &openRouterClient{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		schema:     schema,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

type openRouterRequest struct {
	Model          string                   `json:"model"`
	Messages       []openRouterMessage      `json:"messages"`
	ResponseFormat openRouterResponseFormat `json:"response_format"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponseFormat struct {
	Type       string               `json:"type"`
	JSONSchema openRouterJSONSchema `json:"json_schema"`
}

type openRouterJSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type openRouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openRouterErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *openRouterClient) NormalizeIngredients(ctx context.Context, title string, lines []string) ([]string, error) {
	return c.completeItems(ctx, normalizeSystemPrompt, normalizeUserPrompt(title, lines))
}

func (c *openRouterClient) SelectSuggestions(ctx context.Context, candidates []Candidate, limit int) ([]string, error) {
	selected, err := c.completeItems(ctx, selectSystemPrompt, selectUserPrompt(candidates, limit))
	if err != nil {
		return nil, err
	}
	return filterToCandidates(selected, candidates, limit), nil
}

func (c *openRouterClient) completeItems(ctx context.Context, system, user string) ([]string, error) {
	requestBody := openRouterRequest{
		Model: c.model,
		Messages: []openRouterMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: openRouterResponseFormat{
			Type: "json_schema",
			JSONSchema: openRouterJSONSchema{
				Name:   "items",
				Strict: true,
				Schema: c.schema,
			},
		},
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal openrouter request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build openrouter request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading openrouter response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr openRouterErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openrouter error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("openrouter error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed openRouterResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode openrouter response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openrouter returned no choices")
	}

	var list itemList
	content := stripCodeFence(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &list); err != nil {
		// some models ignore the schema and return a bare array
		return parseStringArray(content)
	}
	return list.Items, nil
}
