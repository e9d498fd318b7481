package recipe

import (
	"reflect"
	"strings"
	"testing"
)

const jsonLDPage = `<!DOCTYPE html>
<html><head>
<title>Fallback Title</title>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Recipe","name":"Pad Thai",
 "recipeIngredient":["8 oz rice noodles","2 tablespoons  soy sauce","1 lime"]}
</script>
</head><body></body></html>`

func TestExtractJSONLD(t *testing.T) {
	recipe, err := extract(strings.NewReader(jsonLDPage))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if recipe.Title != "Pad Thai" {
		t.Errorf("title = %q, want %q", recipe.Title, "Pad Thai")
	}
	want := []string{"8 oz rice noodles", "2 tablespoons soy sauce", "1 lime"}
	if !reflect.DeepEqual(recipe.Ingredients, want) {
		t.Errorf("ingredients = %v, want %v", recipe.Ingredients, want)
	}
}

const graphPage = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
 {"@type":"WebPage","name":"not it"},
 {"@type":["Recipe","NewsArticle"],"name":"Chili","recipeIngredient":["2 cans beans"]}
]}
</script>
</head></html>`

func TestExtractJSONLDGraph(t *testing.T) {
	recipe, err := extract(strings.NewReader(graphPage))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if recipe.Title != "Chili" {
		t.Errorf("title = %q, want %q", recipe.Title, "Chili")
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0] != "2 cans beans" {
		t.Errorf("ingredients = %v", recipe.Ingredients)
	}
}

const legacyKeyPage = `<html><head>
<script type="application/ld+json">
{"@type":"Recipe","ingredients":["1 cup rice"]}
</script>
<title>Rice Bowl</title>
</head></html>`

func TestExtractJSONLDLegacyIngredientsKey(t *testing.T) {
	recipe, err := extract(strings.NewReader(legacyKeyPage))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if recipe.Title != "Rice Bowl" {
		t.Errorf("title should fall back to the page title, got %q", recipe.Title)
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0] != "1 cup rice" {
		t.Errorf("ingredients = %v", recipe.Ingredients)
	}
}

const microdataPage = `<html><head><title>Grandma's Soup</title></head>
<body itemscope itemtype="https://schema.org/Recipe">
<ul>
<li itemprop="recipeIngredient">2 carrots</li>
<li itemprop="recipeIngredient">1 onion,
   diced</li>
<li itemprop="recipeIngredient"> </li>
</ul>
</body></html>`

func TestExtractMicrodataFallback(t *testing.T) {
	recipe, err := extract(strings.NewReader(microdataPage))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if recipe.Title != "Grandma's Soup" {
		t.Errorf("title = %q", recipe.Title)
	}
	want := []string{"2 carrots", "1 onion, diced"}
	if !reflect.DeepEqual(recipe.Ingredients, want) {
		t.Errorf("ingredients = %v, want %v", recipe.Ingredients, want)
	}
}

func TestExtractNoRecipe(t *testing.T) {
	if _, err := extract(strings.NewReader("<html><body><p>hello</p></body></html>")); err == nil {
		t.Fatal("expected an error for a page with no recipe markup")
	}
}

func TestExtractMalformedJSONLDFallsThrough(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{not json</script>
</head><body><span itemprop="recipeIngredient">3 eggs</span></body></html>`
	recipe, err := extract(strings.NewReader(page))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(recipe.Ingredients) != 1 || recipe.Ingredients[0] != "3 eggs" {
		t.Errorf("ingredients = %v", recipe.Ingredients)
	}
}
