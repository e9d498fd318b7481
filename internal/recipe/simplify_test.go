package recipe

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"pantrybot/internal/ai"
)

func TestSimplify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2 cups flour", "flour"},
		{"1 1/2 cups sugar", "sugar"},
		{"3 eggs", "eggs"},
		{"8 oz. rice noodles", "rice noodles"},
		{"salt", "salt"},
		{"1/2 tsp vanilla extract", "vanilla extract"},
		{"soy   sauce", "soy sauce"},
		{"2", "2"}, // nothing left after the quantity, keep the line
		{"2 cups", "2 cups"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Simplify(tc.in); got != tc.want {
			t.Errorf("Simplify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

type fakeNormalizer struct {
	out []string
	err error
}

func (f fakeNormalizer) NormalizeIngredients(context.Context, string, []string) ([]string, error) {
	return f.out, f.err
}

func (f fakeNormalizer) SelectSuggestions(context.Context, []ai.Candidate, int) ([]string, error) {
	return nil, nil
}

func TestNormalizeWithoutModel(t *testing.T) {
	got := Normalize(context.Background(), nil, "Pad Thai", []string{"2 cups flour", "3 eggs"})
	want := []string{"flour", "eggs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalizePrefersModelOutput(t *testing.T) {
	llm := fakeNormalizer{out: []string{"rice noodles", "soy sauce"}}
	got := Normalize(context.Background(), llm, "Pad Thai", []string{"8 oz rice noodles", "2 tbsp soy sauce"})
	want := []string{"rice noodles", "soy sauce"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalizeModelFailureFallsBack(t *testing.T) {
	llm := fakeNormalizer{err: errors.New("model down")}
	got := Normalize(context.Background(), llm, "Pad Thai", []string{"2 cups flour"})
	want := []string{"flour"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}
