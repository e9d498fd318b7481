// Package ai is the optional language-model collaborator. Everything the
// bot does works without it; when a provider is configured it cleans up
// scraped ingredient lines and trims suggestion batches.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pantrybot/internal/config"
)

// Client is the capability interface the rest of the bot programs
// against. Implementations may fail freely; callers always have a
// deterministic fallback.
type Client interface {
	// NormalizeIngredients strips quantities and units from raw recipe
	// lines, returning grocery-list-ready names.
	NormalizeIngredients(ctx context.Context, title string, lines []string) ([]string, error)
	// SelectSuggestions picks at most limit candidate names that are
	// plausibly needed weekly. Returned names must come from candidates.
	SelectSuggestions(ctx context.Context, candidates []Candidate, limit int) ([]string, error)
}

// Candidate is the ranking context handed to the model.
type Candidate struct {
	Name            string  `json:"name"`
	AddCount        int     `json:"add_count"`
	AcceptCount     int     `json:"accept_count"`
	SkipCount       int     `json:"skip_count"`
	WeeksSinceAdded float64 `json:"weeks_since_added"`
}

// NewFromConfig returns the configured provider, or nil when the AI path
// is disabled. A nil Client is the documented "off" state.
func NewFromConfig(cfg config.AIConfig) (Client, error) {
	if cfg.Provider == "" || cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case "openai":
		return newOpenAIClient(cfg), nil
	case "gemini":
		return newGeminiClient(cfg)
	case "openrouter":
		return newOpenRouterClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.Provider)
	}
}

const normalizeSystemPrompt = "You are a helpful cooking assistant. " +
	"Your task is to normalize recipe ingredients for a grocery list. " +
	"Return only a JSON array of ingredient strings. " +
	"Rules: remove quantities and units, keep only the ingredient name, " +
	"keep descriptors when essential (e.g. 'soy sauce', 'rice noodles'), " +
	"deduplicate similar items, and keep names short."

const selectSystemPrompt = "You are a conservative grocery assistant. " +
	"Choose only items that are highly likely to be needed weekly. " +
	"If unsure, return fewer items. " +
	"Return only a JSON array of item names from the provided candidates."

func normalizeUserPrompt(title string, lines []string) string {
	payload, _ := json.Marshal(struct {
		Title       string   `json:"title"`
		Ingredients []string `json:"ingredients"`
	}{title, lines})
	return "Normalize the following recipe ingredients for a grocery list. Return JSON array only.\n" + string(payload)
}

func selectUserPrompt(candidates []Candidate, limit int) string {
	payload, _ := json.Marshal(struct {
		Limit      int         `json:"limit"`
		Candidates []Candidate `json:"candidates"`
	}{limit, candidates})
	return "Select the most likely weekly items. Return JSON array only, using candidate 'name' values.\n" + string(payload)
}

// parseStringArray decodes a model reply into a cleaned string slice,
// tolerating code fences around the JSON.
func parseStringArray(content string) ([]string, error) {
	content = stripCodeFence(content)
	var raw []string
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("model did not return a JSON array: %w", err)
	}
	var out []string
	for _, entry := range raw {
		entry = strings.Join(strings.Fields(entry), " ")
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out, nil
}

// filterToCandidates keeps only names the model was actually offered, in
// candidate order, capped at limit.
func filterToCandidates(selected []string, candidates []Candidate, limit int) []string {
	chosen := make(map[string]bool, len(selected))
	for _, name := range selected {
		chosen[name] = true
	}
	var out []string
	for _, candidate := range candidates {
		if chosen[candidate.Name] {
			out = append(out, candidate.Name)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
