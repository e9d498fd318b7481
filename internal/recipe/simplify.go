package recipe

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"pantrybot/internal/ai"
)

var units = map[string]bool{
	"teaspoon": true, "teaspoons": true, "tsp": true,
	"tablespoon": true, "tablespoons": true, "tbsp": true,
	"cup": true, "cups": true,
	"ounce": true, "ounces": true, "oz": true,
	"pound": true, "pounds": true, "lb": true, "lbs": true,
	"gram": true, "grams": true, "g": true,
	"kilogram": true, "kilograms": true, "kg": true,
	"milliliter": true, "milliliters": true, "ml": true,
	"liter": true, "liters": true, "l": true,
	"clove": true, "cloves": true,
	"slice": true, "slices": true,
	"can": true, "cans": true,
	"package": true, "packages": true, "pkg": true,
	"pinch": true, "pinches": true,
	"dash": true, "dashes": true,
}

var quantityToken = regexp.MustCompile(`^\d+([./]\d+)?$`)

// Simplify strips a leading quantity and unit from one ingredient line:
// "2 cups flour" becomes "flour". Lines with no recognizable prefix pass
// through untouched.
func Simplify(line string) string {
	raw := strings.Join(strings.Fields(line), " ")
	if raw == "" {
		return raw
	}

	parts := strings.Fields(raw)
	idx := 0
	for idx < len(parts) && quantityToken.MatchString(parts[idx]) {
		idx++
	}
	if idx == 0 {
		return raw
	}
	if idx < len(parts) && units[strings.ToLower(strings.TrimSuffix(parts[idx], "."))] {
		idx++
	}
	if rest := strings.Join(parts[idx:], " "); rest != "" {
		return rest
	}
	return raw
}

// Normalize cleans scraped ingredient lines into grocery item names. The
// language model does it when configured; otherwise, or on any model
// failure, the deterministic Simplify pass runs instead.
func Normalize(ctx context.Context, llm ai.Client, title string, lines []string) []string {
	if llm != nil {
		cleaned, err := llm.NormalizeIngredients(ctx, title, lines)
		if err != nil {
			slog.WarnContext(ctx, "ingredient normalization via model failed, using rule-based strip", "error", err)
		} else if len(cleaned) > 0 {
			return cleaned
		}
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if simplified := Simplify(line); simplified != "" {
			out = append(out, simplified)
		}
	}
	return out
}
