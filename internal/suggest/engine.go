// Package suggest ranks historical items for re-adding and learns from
// the user's accept/skip responses.
package suggest

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"pantrybot/internal/ai"
	"pantrybot/internal/items"
)

// Candidate is one ranked suggestion.
type Candidate struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type Engine struct {
	store *items.Store
	llm   ai.Client // nil disables the re-ranking pass
	now   func() time.Time
}

type EngineOption func(*Engine)

func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store *items.Store, llm ai.Client, opts ...EngineOption) *Engine {
	e := &Engine{store: store, llm: llm, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Suggest returns up to limit ranked candidates that are not on the
// chat's current list. A chat with no history gets nothing; suggestions
// are never fabricated. Emitting a candidate stamps its LastSuggestedAt.
func (e *Engine) Suggest(ctx context.Context, chatID int64, limit int) ([]Candidate, error) {
	current, err := e.store.Items(ctx, chatID)
	if err != nil {
		return nil, err
	}
	stats, err := e.store.Stats(ctx, chatID)
	if err != nil {
		return nil, err
	}

	onList := make(map[string]bool, len(current))
	for _, item := range current {
		onList[item.Name] = true
	}

	now := e.now()
	var ranked []Candidate
	for name, itemStats := range stats {
		if onList[name] {
			continue
		}
		display := itemStats.DisplayName
		if display == "" {
			display = name
		}
		ranked = append(ranked, Candidate{
			Name:        name,
			DisplayName: display,
			Score:       score(itemStats, now),
		})
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if addI, addJ := stats[ranked[i].Name].AddCount, stats[ranked[j].Name].AddCount; addI != addJ {
			return addI > addJ
		}
		return ranked[i].Name < ranked[j].Name
	})

	ranked = e.rerank(ctx, ranked, stats, limit, now)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	names := lo.Map(ranked, func(c Candidate, _ int) string { return c.Name })
	if err := e.store.MarkSuggested(ctx, chatID, names); err != nil {
		return nil, err
	}
	return ranked, nil
}

// rerank lets the model trim the deterministic ordering. Any failure
// keeps the deterministic order.
func (e *Engine) rerank(ctx context.Context, ranked []Candidate, stats map[string]items.ItemStats, limit int, now time.Time) []Candidate {
	if e.llm == nil {
		return ranked
	}

	top := ranked
	if len(top) > 20 {
		top = top[:20]
	}
	aiCandidates := lo.Map(top, func(c Candidate, _ int) ai.Candidate {
		itemStats := stats[c.Name]
		weeks := 0.0
		if !itemStats.LastAddedAt.IsZero() {
			weeks = now.Sub(itemStats.LastAddedAt).Hours() / (24 * 7)
		}
		return ai.Candidate{
			Name:            c.Name,
			AddCount:        itemStats.AddCount,
			AcceptCount:     itemStats.AcceptCount,
			SkipCount:       itemStats.SkipCount,
			WeeksSinceAdded: weeks,
		}
	})

	selected, err := e.llm.SelectSuggestions(ctx, aiCandidates, limit)
	if err != nil {
		slog.WarnContext(ctx, "suggestion re-ranking failed, keeping deterministic order", "error", err)
		return ranked
	}
	if len(selected) == 0 {
		return ranked
	}

	chosen := make(map[string]bool, len(selected))
	for _, name := range selected {
		chosen[name] = true
	}
	filtered := lo.Filter(top, func(c Candidate, _ int) bool { return chosen[c.Name] })
	if len(filtered) == 0 {
		return ranked
	}
	return filtered
}

// score blends net acceptance, staleness, and add frequency. An item
// bought often but absent for weeks scores high; a freshly added or
// often-skipped one does not.
func score(stats items.ItemStats, now time.Time) float64 {
	responses := stats.AcceptCount + stats.SkipCount
	net := float64(stats.AcceptCount-stats.SkipCount) / float64(responses+1)

	staleness := 0.0
	if !stats.LastAddedAt.IsZero() {
		days := now.Sub(stats.LastAddedAt).Hours() / 24
		if days > 0 {
			gate := math.Min(1, float64(stats.AddCount)/3)
			staleness = (1 - math.Exp(-days/21)) * gate
		}
	}

	frequency := math.Log1p(float64(stats.AddCount)) / 4

	return 0.5*net + 0.3*staleness + 0.2*frequency
}
